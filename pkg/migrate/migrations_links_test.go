package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alisproject/alis-backend/pkg/migrate"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}

func TestLinksMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_user_device_links.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no user_device_links migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE user_device_links",
		"CHECK (privilege IN ('owner', 'admin', 'limited'))",
		"CREATE UNIQUE INDEX uq_user_device_links_pair ON user_device_links (user_id, alis_device_id)",
		"CREATE UNIQUE INDEX uq_user_device_links_owner ON user_device_links (alis_device_id) WHERE privilege = 'owner'",
		"DROP TABLE user_device_links",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestUsersMigrationContainsUniqueIndexes(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_users.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no users migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	for _, sub := range []string{
		"CREATE UNIQUE INDEX uq_users_username ON users (username) WHERE username <> ''",
		"CREATE UNIQUE INDEX uq_users_chosen_username ON users (chosen_username) WHERE chosen_username <> ''",
		"CREATE UNIQUE INDEX uq_users_email_address ON users (email_address)",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
