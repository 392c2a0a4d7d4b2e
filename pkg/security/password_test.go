package security_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/alisproject/alis-backend/pkg/config"
	"github.com/alisproject/alis-backend/pkg/security"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash encoding %q", hash)
	}
	if strings.Contains(hash, "very-secure-password") {
		t.Fatal("hash leaks the plaintext")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	first, err := security.HashPassword("repeatable", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := security.HashPassword("repeatable", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password should differ by salt")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestGenerateClientSecret(t *testing.T) {
	secret, err := security.GenerateClientSecret()
	if err != nil {
		t.Fatalf("GenerateClientSecret returned error: %v", err)
	}
	raw, err := hex.DecodeString(secret)
	if err != nil {
		t.Fatalf("secret is not hex: %v", err)
	}
	if len(raw) != security.ClientSecretBytes {
		t.Fatalf("expected %d bytes of entropy, got %d", security.ClientSecretBytes, len(raw))
	}

	other, err := security.GenerateClientSecret()
	if err != nil {
		t.Fatalf("GenerateClientSecret returned error: %v", err)
	}
	if secret == other {
		t.Fatal("two generated secrets should differ")
	}
}

func TestNewVerificationCode(t *testing.T) {
	code := security.NewVerificationCode()
	if code == "" {
		t.Fatal("expected non-empty verification code")
	}
	if code == security.NewVerificationCode() {
		t.Fatal("verification codes should be unique")
	}
}
