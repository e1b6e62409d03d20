package dto

import (
	"time"

	"github.com/google/uuid"
)

// UserResponse is the public projection of a user; the password hash never leaves the service.
type UserResponse struct {
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Id        uuid.UUID `json:"id"`
	CreatedOn time.Time `json:"createdOn"`
}
