package devices

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alisproject/alis-backend/internal/repo"
	"github.com/alisproject/alis-backend/pkg/db"
	"github.com/alisproject/alis-backend/pkg/db/models"
	pkgerrors "github.com/alisproject/alis-backend/pkg/errors"
)

// Repository exposes ALIS device persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a devices repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new device and returns the persisted model.
func (r *Repository) Create(ctx context.Context, device *models.ALISDevice) (*models.ALISDevice, error) {
	if err := r.DB(ctx).Create(device).Error; err != nil {
		if db.IsUniqueViolation(err, "uuid_token") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "uuid_token already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist device")
	}
	return device, nil
}

// Save persists the full device record.
func (r *Repository) Save(ctx context.Context, device *models.ALISDevice) (*models.ALISDevice, error) {
	if err := r.DB(ctx).Save(device).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist device")
	}
	return device, nil
}

// FindByID loads a device by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ALISDevice, error) {
	var device models.ALISDevice
	if err := r.DB(ctx).First(&device, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "device not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup device")
	}
	return &device, nil
}

// FindByUUIDToken retrieves a device by its pairing token.
func (r *Repository) FindByUUIDToken(ctx context.Context, token uuid.UUID) (*models.ALISDevice, error) {
	var device models.ALISDevice
	if err := r.DB(ctx).First(&device, "uuid_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "device not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup device")
	}
	return &device, nil
}
