package models

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the portal roles.
type UserRole string

const (
	RoleDirector UserRole = "director"
	RoleTutor    UserRole = "tutor"
	RoleTeacher  UserRole = "docente"
)

// RoleFromStaff maps the staff service role label to a portal role.
func RoleFromStaff(label string) (UserRole, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "director":
		return RoleDirector, true
	case "tutor académico", "tutor academico", "tutor":
		return RoleTutor, true
	case "docente":
		return RoleTeacher, true
	}
	return "", false
}

// LoginRequest holds credentials forwarded to the staff service.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StaffIdentity is the user returned by the staff service login.
type StaffIdentity struct {
	ID    string   `json:"id"`
	Name  string   `json:"nombre"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Role UserRole `json:"role"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}

// JWTClaims represents the gateway token payload.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Name   string   `json:"name"`
	jwt.RegisteredClaims
}
