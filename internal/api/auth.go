// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the role required on credential management routes.
const RoleAdmin = "admin"

// ErrMissingToken is returned when no bearer token is present.
var ErrMissingToken = errors.New("missing bearer token")

// Claims represents admin JWT claims
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuth verifies HS256 bearer tokens for admin routes.
type AdminAuth struct {
	secret  []byte
	enabled bool
}

// NewAdminAuth creates the verifier. A disabled verifier lets every request
// through, which is intended for single-operator deployments on a private
// network.
func NewAdminAuth(secret string, enabled bool) (*AdminAuth, error) {
	if enabled && secret == "" {
		return nil, fmt.Errorf("admin auth enabled but JWT secret is empty")
	}
	return &AdminAuth{secret: []byte(secret), enabled: enabled}, nil
}

// Enabled reports whether tokens are checked.
func (a *AdminAuth) Enabled() bool {
	return a != nil && a.enabled
}

// GenerateToken signs an admin token for subject valid for ttl.
func (a *AdminAuth) GenerateToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies tokenString.
func (a *AdminAuth) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// RequireAdmin rejects requests without a valid admin token.
func (a *AdminAuth) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next(w, r)
			return
		}

		tokenString, err := bearerToken(r)
		if err != nil {
			respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil, nil)
			return
		}

		claims, err := a.ValidateToken(tokenString)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "Token expired"
			}
			respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, message, nil, err)
			return
		}
		if claims.Role != RoleAdmin {
			respondError(w, r, http.StatusForbidden, ErrCodeForbidden, "Admin role required", nil, nil)
			return
		}

		next(w, r)
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
