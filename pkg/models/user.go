package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a persisted account record. The password hash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedTS    time.Time `json:"created_at"`
	UpdatedTS    time.Time `json:"updated_at"`
}

// SignUpRequest is the sign-up request body. Validation tags drive the
// validate step of the sign-up pipeline.
type SignUpRequest struct {
	FirstName            string `json:"first_name" validate:"required"`
	LastName             string `json:"last_name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}
