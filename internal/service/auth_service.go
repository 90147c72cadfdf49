package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"triviarooms/internal/config"
	"triviarooms/internal/game"
	"triviarooms/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService issues curator and room-scoped player tokens
type AuthService struct {
	curatorUsername string
	curatorPassword string
	jwtSecret       []byte
	tokenTTL        time.Duration
	clock           game.Clock
}

// NewAuthService creates a new auth service
func NewAuthService(cfg config.AuthConfig, clock game.Clock) *AuthService {
	if clock == nil {
		clock = game.SystemClock()
	}
	return &AuthService{
		curatorUsername: cfg.CuratorUsername,
		curatorPassword: cfg.CuratorPassword,
		jwtSecret:       []byte(cfg.JWTSecret),
		tokenTTL:        cfg.TokenTTL,
		clock:           clock,
	}
}

// Login validates curator credentials. An empty configured password
// disables curator login.
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if s.curatorPassword == "" {
		return nil, ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.curatorUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.curatorPassword)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	curatorID := "curator_" + uuid.New().String()[:8]
	now := s.clock.Now()
	claims := &model.CuratorClaims{
		CuratorID: curatorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	tokenString, err := s.sign(claims)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: tokenString, CuratorID: curatorID}, nil
}

// ValidateCuratorToken validates a curator JWT and returns claims
func (s *AuthService) ValidateCuratorToken(tokenString string) (*model.CuratorClaims, error) {
	claims := &model.CuratorClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.CuratorID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GeneratePlayerToken creates a room-scoped token for a player
func (s *AuthService) GeneratePlayerToken(roomCode, playerID string, isHost bool) (string, error) {
	now := s.clock.Now()
	claims := &model.PlayerClaims{
		RoomCode: roomCode,
		PlayerID: playerID,
		IsHost:   isHost,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return s.sign(claims)
}

// ValidatePlayerToken validates a player JWT and returns claims
func (s *AuthService) ValidatePlayerToken(tokenString string) (*model.PlayerClaims, error) {
	claims := &model.PlayerClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.RoomCode == "" || claims.PlayerID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
