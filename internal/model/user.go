package model

import "time"

// UserAccount is a person identified by an EUID (e.g. "abc1234").
type UserAccount struct {
	EUID         string    `json:"euid"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RefreshToken is the server-side record of an issued refresh token.
// Rows are never deleted; Revoked flips to true exactly once.
type RefreshToken struct {
	Token     string    `json:"-"`
	EUID      string    `json:"euid"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenPair is returned by every successful login, enrollment or rotation.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// LoginRequest is the payload for password authentication.
type LoginRequest struct {
	EUID     string `json:"euid" binding:"required,euid"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// RefreshRequest carries a refresh token for rotation or revocation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// FaceLoginRequest is the payload for biometric student login.
type FaceLoginRequest struct {
	EUID  string `json:"euid" binding:"required,euid"`
	Photo string `json:"photo" binding:"required,b64image"`
}

// JoinCodeEnrollRequest enrolls a student with a class join code and a reference photo.
type JoinCodeEnrollRequest struct {
	EUID     string `json:"euid" binding:"required,euid"`
	Code     string `json:"code" binding:"required,classcode"`
	JoinCode string `json:"join_code" binding:"required,joincode"`
	Photo    string `json:"photo" binding:"required,b64image"`
}
