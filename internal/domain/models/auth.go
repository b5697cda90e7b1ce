package models

import "github.com/golang-jwt/jwt/v5"

// FirebaseClaims represents the JWT claims structure of a Firebase ID token.
// See: https://firebase.google.com/docs/auth/admin/verify-id-tokens
type FirebaseClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Name                 string `json:"name"`
	Email                string `json:"email"`
	EmailVerified        bool   `json:"email_verified"`
	AuthTime             int64  `json:"auth_time"`
	// Firebase carries the sign-in provider under a nested claim.
	Firebase map[string]interface{} `json:"firebase"`
}

// GetUserID returns the Firebase UID from the JWT subject claim.
// This is the primary identifier for the authenticated user.
func (c *FirebaseClaims) GetUserID() string {
	return c.Subject
}
