package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// GymsnapClaims represents custom JWT claims for app session tokens
type GymsnapClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
