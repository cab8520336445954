package models

import (
	"time"

	"github.com/google/uuid"
)

// Account roles.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleAdmin      = "admin"
)

type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type FreelancerProfile struct {
	UserID          uuid.UUID `json:"user_id"`
	Skills          []string  `json:"skills"`
	Bio             string    `json:"bio"`
	HourlyRateCents int64     `json:"hourly_rate_cents"`
	UpdatedAt       time.Time `json:"updated_at"`
}
