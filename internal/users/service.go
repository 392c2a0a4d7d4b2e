package users

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/alisproject/alis-backend/pkg/config"
	"github.com/alisproject/alis-backend/pkg/db/models"
	pkgerrors "github.com/alisproject/alis-backend/pkg/errors"
	"github.com/alisproject/alis-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service owns the user lifecycle: the create/update validation pipeline and
// credential verification.
type Service struct {
	repo        userRepository
	passwordCfg config.PasswordConfig
	// dummyHash levels the timing of Authenticate on identifier misses.
	dummyHash string
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
}

// NewService constructs a user service with the provided dependencies.
func NewService(repo userRepository, passwordCfg config.PasswordConfig) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	dummy, err := security.HashPassword(uuid.NewString(), passwordCfg)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Service{
		repo:        repo,
		passwordCfg: passwordCfg,
		dummyHash:   dummy,
	}, nil
}

// Create runs the new-user pipeline: verification code assignment, username
// pair normalization, field validation, password hashing, then the insert.
// The first failing check aborts the whole operation.
func (s *Service) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	user := &models.User{
		VerificationCode: security.NewVerificationCode(),
	}

	if input.Username != "" {
		applyUsername(user, input.Username)
		if err := checkUsername(user.Username); err != nil {
			return nil, err
		}
	}

	user.FullName = input.FullName
	if err := checkFullName(user.FullName); err != nil {
		return nil, err
	}

	user.EmailAddress = strings.ToLower(strings.TrimSpace(input.EmailAddress))
	if err := checkEmail(user.EmailAddress); err != nil {
		return nil, err
	}

	if err := checkPassword(input.Password); err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user.Password = hash

	return s.repo.Create(ctx, user)
}

// Update applies a partial update through the same checks as Create. The
// username pair is always recomputed together; the password is re-hashed only
// when a new plaintext is supplied; the verification code is never touched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		applyUsername(user, *input.Username)
		if err := checkUsername(user.Username); err != nil {
			return nil, err
		}
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
		if err := checkFullName(user.FullName); err != nil {
			return nil, err
		}
	}

	if input.EmailAddress != nil {
		user.EmailAddress = strings.ToLower(strings.TrimSpace(*input.EmailAddress))
		if err := checkEmail(user.EmailAddress); err != nil {
			return nil, err
		}
	}

	if input.Password != nil {
		if err := checkPassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		user.Password = hash
	}

	return s.repo.Save(ctx, user)
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Authenticate resolves the identifier to a user and verifies the password.
// A missing user and a wrong password are indistinguishable to the caller; a
// dummy verification runs on lookup misses so the two paths cost the same.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			_, _ = security.VerifyPassword(password, s.dummyHash)
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, err
	}

	ok, err := security.VerifyPassword(password, user.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

// Verify marks the user verified when the presented code matches the one
// assigned at creation.
func (s *Service) Verify(ctx context.Context, id uuid.UUID, code string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(user.VerificationCode), []byte(code)) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid verification code")
	}
	if user.IsVerified {
		return user, nil
	}
	user.IsVerified = true
	return s.repo.Save(ctx, user)
}

// applyUsername recomputes the stored pair from a caller-supplied value:
// ChosenUsername keeps the submitted case, Username is its lowercase form.
func applyUsername(user *models.User, submitted string) {
	trimmed := strings.TrimSpace(submitted)
	user.ChosenUsername = trimmed
	user.Username = strings.ToLower(trimmed)
}
