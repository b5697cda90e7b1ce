package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"maisoku/internal/domain"
	"maisoku/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// FirebaseTokenVerifier implements TokenVerifier using Google's securetoken
// JWKS endpoint. Firebase ID tokens are ordinary RS256 JWTs whose audience is
// the Firebase project ID and whose issuer is
// https://securetoken.google.com/<project>.
type FirebaseTokenVerifier struct {
	jwks      keyfunc.Keyfunc
	projectID string
	issuer    string
	logger    *slog.Logger
}

// NewTokenVerifier creates a verifier that fetches Google's public signing
// keys from the JWKS endpoint. Keys are cached and automatically refreshed
// based on HTTP cache headers.
func NewTokenVerifier(jwksURL, projectID, issuer string, logger *slog.Logger) (TokenVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}
	if projectID == "" {
		return nil, errors.New("Firebase project ID cannot be empty")
	}

	ctx := context.Background()
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("token verifier initialized", "jwks_url", jwksURL, "project_id", projectID)

	return &FirebaseTokenVerifier{
		jwks:      jwks,
		projectID: projectID,
		issuer:    issuer,
		logger:    logger,
	}, nil
}

// VerifyToken validates a Firebase ID token and extracts its claims.
// Returns domain.ErrUnauthorized for any verification failure - callers never
// see the raw parse error.
func (v *FirebaseTokenVerifier) VerifyToken(tokenString string) (*models.FirebaseClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.FirebaseClaims{}, v.jwks.Keyfunc,
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err.Error())
		return nil, domain.ErrUnauthorized
	}

	if !token.Valid {
		v.logger.Debug("token invalid after parsing")
		return nil, domain.ErrUnauthorized
	}

	// Prevent algorithm confusion attacks - securetoken only signs RS256
	if token.Method.Alg() != "RS256" {
		v.logger.Warn("token uses unexpected algorithm", "algorithm", token.Method.Alg())
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.FirebaseClaims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	// Validate user ID exists (sub claim carries the Firebase UID)
	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close releases resources held by the verifier. keyfunc manages its own
// refresh lifecycle, so this is a no-op for graceful shutdown compatibility.
func (v *FirebaseTokenVerifier) Close() error {
	v.logger.Info("token verifier closed")
	return nil
}
