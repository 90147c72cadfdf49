package model

import "github.com/golang-jwt/jwt/v5"

// CuratorClaims are JWT claims for quiz bank authors.
type CuratorClaims struct {
	CuratorID string `json:"curatorId"`
	jwt.RegisteredClaims
}

// PlayerClaims are JWT claims for player room-scoped tokens
type PlayerClaims struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	IsHost   bool   `json:"isHost"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for curator login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token     string `json:"token"`
	CuratorID string `json:"curatorId"`
}
