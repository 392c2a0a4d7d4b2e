package devices

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alisproject/alis-backend/internal/links"
	"github.com/alisproject/alis-backend/pkg/db/models"
	"github.com/alisproject/alis-backend/pkg/enums"
	pkgerrors "github.com/alisproject/alis-backend/pkg/errors"
	"github.com/alisproject/alis-backend/pkg/security"
)

// Service owns the device lifecycle and the access queries derived from the
// link table.
type Service struct {
	repo  deviceRepository
	links linkRepository
}

type deviceRepository interface {
	Create(ctx context.Context, device *models.ALISDevice) (*models.ALISDevice, error)
	Save(ctx context.Context, device *models.ALISDevice) (*models.ALISDevice, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ALISDevice, error)
	FindByUUIDToken(ctx context.Context, token uuid.UUID) (*models.ALISDevice, error)
}

type linkRepository interface {
	Create(ctx context.Context, input links.CreateLinkInput) (*models.UserDeviceLink, error)
	Get(ctx context.Context, userID, deviceID uuid.UUID) (*models.UserDeviceLink, error)
	GetOwner(ctx context.Context, deviceID uuid.UUID) (*models.User, error)
	UserHasPrivilege(ctx context.Context, userID, deviceID uuid.UUID, privileges ...enums.Privilege) (bool, error)
	HasAccess(ctx context.Context, userID, deviceID uuid.UUID) (bool, error)
	Delete(ctx context.Context, userID, deviceID uuid.UUID) error
}

// NewService constructs a device service over the two repositories.
func NewService(repo deviceRepository, linkRepo linkRepository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("device repository is required")
	}
	if linkRepo == nil {
		return nil, fmt.Errorf("link repository is required")
	}
	return &Service{repo: repo, links: linkRepo}, nil
}

// Create mints a device with a fresh pairing token and client secret. Nothing
// about the secrets is caller-controlled.
func (s *Service) Create(ctx context.Context, input CreateDeviceInput) (*models.ALISDevice, error) {
	secret, err := security.GenerateClientSecret()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate client secret")
	}
	device := &models.ALISDevice{
		UUIDToken:    uuid.New(),
		ClientSecret: secret,
		Name:         input.Name,
	}
	return s.repo.Create(ctx, device)
}

// Update applies a partial update. The pairing token is immutable: submitting
// any value other than the stored one is rejected before the write.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateDeviceInput) (*models.ALISDevice, error) {
	device, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.UUIDToken != nil && *input.UUIDToken != device.UUIDToken {
		return nil, pkgerrors.New(pkgerrors.CodeImmutable, "uuid_token must not change")
	}

	if input.Name != nil {
		device.Name = *input.Name
	}

	return s.repo.Save(ctx, device)
}

// Get loads a device by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.ALISDevice, error) {
	return s.repo.FindByID(ctx, id)
}

// FindByUUIDToken resolves a device by its pairing token.
func (s *Service) FindByUUIDToken(ctx context.Context, token uuid.UUID) (*models.ALISDevice, error) {
	return s.repo.FindByUUIDToken(ctx, token)
}

// ResetClientSecret replaces the device's client secret with a new random one.
func (s *Service) ResetClientSecret(ctx context.Context, id uuid.UUID) (*models.ALISDevice, error) {
	device, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	secret, err := security.GenerateClientSecret()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate client secret")
	}
	device.ClientSecret = secret
	return s.repo.Save(ctx, device)
}

// Pair associates the user with the device. On an orphan device the link
// machinery promotes the user to owner; on a claimed device the request is
// treated as a self-grant and rejected unless the user already administers it.
func (s *Service) Pair(ctx context.Context, userID, deviceID uuid.UUID) (*models.UserDeviceLink, error) {
	return s.links.Create(ctx, links.CreateLinkInput{
		UserID:   userID,
		DeviceID: deviceID,
	})
}

// GetOwner returns the device's owner, or nil while the device is orphaned.
func (s *Service) GetOwner(ctx context.Context, deviceID uuid.UUID) (*models.User, error) {
	return s.links.GetOwner(ctx, deviceID)
}

// IsAdmin reports whether the user holds admin-or-owner privilege on the
// device.
func (s *Service) IsAdmin(ctx context.Context, userID, deviceID uuid.UUID) (bool, error) {
	return s.links.UserHasPrivilege(ctx, userID, deviceID, enums.PrivilegeOwner, enums.PrivilegeAdmin)
}

// HasAccess reports whether the user holds any link to the device.
func (s *Service) HasAccess(ctx context.Context, userID, deviceID uuid.UUID) (bool, error) {
	return s.links.HasAccess(ctx, userID, deviceID)
}

// GrantAccess creates a limited link for the target user, attributed to the
// acting user. The actor must administer the device.
func (s *Service) GrantAccess(ctx context.Context, deviceID, actorID, targetID uuid.UUID) (*models.UserDeviceLink, error) {
	allowed, err := s.IsAdmin(ctx, actorID, deviceID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can grant access")
	}
	return s.links.Create(ctx, links.CreateLinkInput{
		UserID:    targetID,
		DeviceID:  deviceID,
		GrantedBy: &actorID,
	})
}

// RevokeAccess removes the target user's link. Only an administering actor may
// revoke, and the owner link is never removable.
func (s *Service) RevokeAccess(ctx context.Context, deviceID, actorID, targetID uuid.UUID) error {
	allowed, err := s.IsAdmin(ctx, actorID, deviceID)
	if err != nil {
		return err
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can revoke access")
	}

	link, err := s.links.Get(ctx, targetID, deviceID)
	if err != nil {
		return err
	}
	if link.Privilege == enums.PrivilegeOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "owner access cannot be revoked")
	}

	return s.links.Delete(ctx, targetID, deviceID)
}
