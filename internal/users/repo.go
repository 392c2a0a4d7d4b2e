package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alisproject/alis-backend/internal/repo"
	"github.com/alisproject/alis-backend/pkg/db"
	"github.com/alisproject/alis-backend/pkg/db/models"
	pkgerrors "github.com/alisproject/alis-backend/pkg/errors"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, translateConflict(err)
	}
	return user, nil
}

// Save persists the full user record.
func (r *Repository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.DB(ctx).Save(user).Error; err != nil {
		return nil, translateConflict(err)
	}
	return user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return &user, nil
}

// FindByIdentifier retrieves the user whose username or email address matches
// the identifier (case-insensitively).
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(identifier))
	var user models.User
	err := r.DB(ctx).
		Where("username = ? OR email_address = ?", normalized, normalized).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return &user, nil
}

// translateConflict maps unique-constraint violations to conflict errors
// naming the violating field. chosen_username is tested first because its
// constraint text contains "username".
func translateConflict(err error) error {
	switch {
	case db.IsUniqueViolation(err, "chosen_username"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "chosen_username already taken").
			WithDetails(map[string]string{"field": "chosen_username"})
	case db.IsUniqueViolation(err, "username"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username already taken").
			WithDetails(map[string]string{"field": "username"})
	case db.IsUniqueViolation(err, "email_address"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email_address already taken").
			WithDetails(map[string]string{"field": "email_address"})
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist user")
}
