package devices

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alisproject/alis-backend/internal/links"
	"github.com/alisproject/alis-backend/pkg/db/models"
	"github.com/alisproject/alis-backend/pkg/enums"
	pkgerrors "github.com/alisproject/alis-backend/pkg/errors"
	"github.com/alisproject/alis-backend/pkg/security"
)

var deviceFixtureDDL = []string{
	`CREATE TABLE users (
		id text PRIMARY KEY,
		username text NOT NULL DEFAULT '',
		chosen_username text NOT NULL DEFAULT '',
		full_name text,
		email_address text NOT NULL,
		password text NOT NULL,
		verification_code text NOT NULL,
		is_verified boolean NOT NULL DEFAULT false,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE alis_devices (
		id text PRIMARY KEY,
		uuid_token text NOT NULL,
		client_secret text NOT NULL,
		name text,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE UNIQUE INDEX uq_alis_devices_uuid_token ON alis_devices (uuid_token)`,
	`CREATE TABLE user_device_links (
		id text PRIMARY KEY,
		user_id text NOT NULL,
		alis_device_id text NOT NULL,
		privilege text NOT NULL DEFAULT 'limited',
		granted_by_user_id text,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE UNIQUE INDEX uq_user_device_links_pair ON user_device_links (user_id, alis_device_id)`,
	`CREATE UNIQUE INDEX uq_user_device_links_owner ON user_device_links (alis_device_id) WHERE privilege = 'owner'`,
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err, "open sqlite")
	for _, stmt := range deviceFixtureDDL {
		require.NoError(t, conn.Exec(stmt).Error, "apply fixture DDL")
	}

	svc, err := NewService(NewRepository(conn), links.NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := &models.User{
		Username:         "user-" + suffix,
		ChosenUsername:   "user-" + suffix,
		EmailAddress:     suffix + "@example.com",
		Password:         "not-a-real-hash",
		VerificationCode: uuid.NewString(),
	}
	require.NoError(t, db.Create(user).Error, "seed user")
	return user
}

func TestCreate_GeneratesSecrets(t *testing.T) {
	svc, _ := newTestService(t)

	device, err := svc.Create(context.Background(), CreateDeviceInput{Name: "living room"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, device.UUIDToken)
	require.Len(t, device.ClientSecret, security.ClientSecretBytes*2)
	require.Equal(t, "living room", device.Name)

	other, err := svc.Create(context.Background(), CreateDeviceInput{})
	require.NoError(t, err)
	require.NotEqual(t, device.UUIDToken, other.UUIDToken)
	require.NotEqual(t, device.ClientSecret, other.ClientSecret)
}

func TestUpdate_RenameAllowed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	device, err := svc.Create(ctx, CreateDeviceInput{Name: "old name"})
	require.NoError(t, err)

	newName := "new name"
	updated, err := svc.Update(ctx, device.ID, UpdateDeviceInput{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "new name", updated.Name)
	require.Equal(t, device.UUIDToken, updated.UUIDToken)
}

func TestUpdate_UUIDTokenImmutable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	device, err := svc.Create(ctx, CreateDeviceInput{})
	require.NoError(t, err)

	fresh := uuid.New()
	_, err = svc.Update(ctx, device.ID, UpdateDeviceInput{UUIDToken: &fresh})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeImmutable))
	require.ErrorContains(t, err, "uuid_token must not change")

	// Resubmitting the stored token is not a change.
	same := device.UUIDToken
	updated, err := svc.Update(ctx, device.ID, UpdateDeviceInput{UUIDToken: &same})
	require.NoError(t, err)
	require.Equal(t, device.UUIDToken, updated.UUIDToken)
}

func TestResetClientSecret(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	device, err := svc.Create(ctx, CreateDeviceInput{})
	require.NoError(t, err)

	updated, err := svc.ResetClientSecret(ctx, device.ID)
	require.NoError(t, err)
	require.NotEqual(t, device.ClientSecret, updated.ClientSecret)
	require.Len(t, updated.ClientSecret, security.ClientSecretBytes*2)
	require.Equal(t, device.UUIDToken, updated.UUIDToken)
}

func TestFindByUUIDToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	device, err := svc.Create(ctx, CreateDeviceInput{})
	require.NoError(t, err)

	found, err := svc.FindByUUIDToken(ctx, device.UUIDToken)
	require.NoError(t, err)
	require.Equal(t, device.ID, found.ID)

	_, err = svc.FindByUUIDToken(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestPair_FirstUserBecomesOwner(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, db)
	device, err := svc.Create(ctx, CreateDeviceInput{})
	require.NoError(t, err)

	owner, err := svc.GetOwner(ctx, device.ID)
	require.NoError(t, err)
	require.Nil(t, owner)

	link, err := svc.Pair(ctx, user.ID, device.ID)
	require.NoError(t, err)
	require.Equal(t, enums.PrivilegeOwner, link.Privilege)

	owner, err = svc.GetOwner(ctx, device.ID)
	require.NoError(t, err)
	require.NotNil(t, owner)
	require.Equal(t, user.ID, owner.ID)

	isAdmin, err := svc.IsAdmin(ctx, user.ID, device.ID)
	require.NoError(t, err)
	require.True(t, isAdmin)
}

func TestGrantAccess(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := seedUser(t, db)
	guest := seedUser(t, db)
	outsider := seedUser(t, db)
	device, err := svc.Create(ctx, CreateDeviceInput{})
	require.NoError(t, err)

	_, err = svc.Pair(ctx, owner.ID, device.ID)
	require.NoError(t, err)

	_, err = svc.GrantAccess(ctx, device.ID, outsider.ID, guest.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	require.ErrorContains(t, err, "only admins can grant access")

	link, err := svc.GrantAccess(ctx, device.ID, owner.ID, guest.ID)
	require.NoError(t, err)
	require.Equal(t, enums.PrivilegeLimited, link.Privilege)
	require.NotNil(t, link.GrantedByUserID)
	require.Equal(t, owner.ID, *link.GrantedByUserID)

	hasAccess, err := svc.HasAccess(ctx, guest.ID, device.ID)
	require.NoError(t, err)
	require.True(t, hasAccess)

	isAdmin, err := svc.IsAdmin(ctx, guest.ID, device.ID)
	require.NoError(t, err)
	require.False(t, isAdmin)
}

func TestRevokeAccess(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := seedUser(t, db)
	guest := seedUser(t, db)
	outsider := seedUser(t, db)
	device, err := svc.Create(ctx, CreateDeviceInput{})
	require.NoError(t, err)

	_, err = svc.Pair(ctx, owner.ID, device.ID)
	require.NoError(t, err)
	_, err = svc.GrantAccess(ctx, device.ID, owner.ID, guest.ID)
	require.NoError(t, err)

	err = svc.RevokeAccess(ctx, device.ID, outsider.ID, guest.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	err = svc.RevokeAccess(ctx, device.ID, owner.ID, owner.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	require.ErrorContains(t, err, "owner access cannot be revoked")

	require.NoError(t, svc.RevokeAccess(ctx, device.ID, owner.ID, guest.ID))

	hasAccess, err := svc.HasAccess(ctx, guest.ID, device.ID)
	require.NoError(t, err)
	require.False(t, hasAccess)
}
