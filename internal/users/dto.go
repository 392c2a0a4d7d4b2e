package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/alisproject/alis-backend/pkg/db/models"
)

// CreateUserInput carries caller-supplied fields for a new user. Username is
// accepted in any case; the stored pair is derived from it. Password is
// plaintext here and exists only until the pipeline hashes it.
type CreateUserInput struct {
	Username     string
	FullName     string
	EmailAddress string
	Password     string
}

// UpdateUserInput carries partial updates; nil fields are left untouched.
type UpdateUserInput struct {
	Username     *string
	FullName     *string
	EmailAddress *string
	Password     *string
}

// UserDTO is the transport shape that omits credentials and the verification
// code.
type UserDTO struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	ChosenUsername string    `json:"chosen_username"`
	FullName       string    `json:"full_name,omitempty"`
	EmailAddress   string    `json:"email_address"`
	IsVerified     bool      `json:"is_verified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:             u.ID,
		Username:       u.Username,
		ChosenUsername: u.ChosenUsername,
		FullName:       u.FullName,
		EmailAddress:   u.EmailAddress,
		IsVerified:     u.IsVerified,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
