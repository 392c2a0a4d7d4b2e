package links

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alisproject/alis-backend/internal/repo"
	"github.com/alisproject/alis-backend/pkg/db"
	"github.com/alisproject/alis-backend/pkg/db/models"
	"github.com/alisproject/alis-backend/pkg/enums"
	pkgerrors "github.com/alisproject/alis-backend/pkg/errors"
)

// Repository exposes persistence operations on user-device links.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// CreateLinkInput names the parties of a proposed association. GrantedBy is
// the acting user the request attributes the grant to; it may be nil only
// while the device is still orphaned.
type CreateLinkInput struct {
	UserID    uuid.UUID
	DeviceID  uuid.UUID
	GrantedBy *uuid.UUID
}

// Create runs the link-creation state machine. The orphan check and the
// insert happen inside one transaction holding a row lock on the device, so
// exactly one concurrent writer can observe the empty association set and be
// assigned owner; everyone after that needs an admin-or-owner grantor and
// receives the default limited privilege.
func (r *Repository) Create(ctx context.Context, input CreateLinkInput) (*models.UserDeviceLink, error) {
	var link *models.UserDeviceLink

	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		locked := tx
		if tx.Dialector.Name() == "postgres" {
			locked = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var device models.ALISDevice
		if err := locked.First(&device, "id = ?", input.DeviceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "device not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock device")
		}

		var existing int64
		if err := tx.Model(&models.UserDeviceLink{}).
			Where("alis_device_id = ?", input.DeviceID).
			Count(&existing).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count device links")
		}

		privilege := enums.PrivilegeLimited
		if existing == 0 {
			// First association claims the orphan device outright.
			privilege = enums.PrivilegeOwner
		} else {
			if input.GrantedBy == nil {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can grant access")
			}
			allowed, err := userHasPrivilege(tx, *input.GrantedBy, input.DeviceID, enums.PrivilegeOwner, enums.PrivilegeAdmin)
			if err != nil {
				return err
			}
			if !allowed {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can grant access")
			}
		}

		candidate := &models.UserDeviceLink{
			UserID:          input.UserID,
			ALISDeviceID:    input.DeviceID,
			Privilege:       privilege,
			GrantedByUserID: input.GrantedBy,
		}
		if err := tx.Create(candidate).Error; err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user is already linked to this device")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist link")
		}
		link = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// Get retrieves the link for (user, device), or a not-found error.
func (r *Repository) Get(ctx context.Context, userID, deviceID uuid.UUID) (*models.UserDeviceLink, error) {
	var link models.UserDeviceLink
	err := r.DB(ctx).
		Where("user_id = ? AND alis_device_id = ?", userID, deviceID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup link")
	}
	return &link, nil
}

// GetOwner returns the user holding the owner link for the device, or nil
// when the device is orphaned.
func (r *Repository) GetOwner(ctx context.Context, deviceID uuid.UUID) (*models.User, error) {
	var owner models.User
	err := r.DB(ctx).
		Model(&models.User{}).
		Joins("JOIN user_device_links ON user_device_links.user_id = users.id").
		Where("user_device_links.alis_device_id = ? AND user_device_links.privilege = ?", deviceID, enums.PrivilegeOwner).
		First(&owner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup owner")
	}
	return &owner, nil
}

// UserHasPrivilege reports whether the user holds one of the provided
// privileges on the device.
func (r *Repository) UserHasPrivilege(ctx context.Context, userID, deviceID uuid.UUID, privileges ...enums.Privilege) (bool, error) {
	return userHasPrivilege(r.DB(ctx), userID, deviceID, privileges...)
}

// HasAccess reports whether any link exists for (user, device), regardless of
// privilege.
func (r *Repository) HasAccess(ctx context.Context, userID, deviceID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.UserDeviceLink{}).
		Where("user_id = ? AND alis_device_id = ?", userID, deviceID).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count links")
	}
	return count > 0, nil
}

// ListForDevice returns all links for the device ordered by creation time.
func (r *Repository) ListForDevice(ctx context.Context, deviceID uuid.UUID) ([]models.UserDeviceLink, error) {
	var rows []models.UserDeviceLink
	err := r.DB(ctx).
		Where("alis_device_id = ?", deviceID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list device links")
	}
	return rows, nil
}

// Delete removes the link for (user, device). The caller is responsible for
// the revocation policy; deleting a link never touches either endpoint.
func (r *Repository) Delete(ctx context.Context, userID, deviceID uuid.UUID) error {
	res := r.DB(ctx).
		Where("user_id = ? AND alis_device_id = ?", userID, deviceID).
		Delete(&models.UserDeviceLink{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "delete link")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "link not found")
	}
	return nil
}

func userHasPrivilege(tx *gorm.DB, userID, deviceID uuid.UUID, privileges ...enums.Privilege) (bool, error) {
	if len(privileges) == 0 {
		return false, nil
	}
	var count int64
	err := tx.Model(&models.UserDeviceLink{}).
		Where("user_id = ? AND alis_device_id = ? AND privilege IN ?", userID, deviceID, privileges).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check privilege")
	}
	return count > 0, nil
}
