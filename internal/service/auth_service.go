package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"heater_control/internal/models"
	"heater_control/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = time.Hour

// Domain errors for auth flows.
var (
	ErrInvalidInput       = errors.New("invalid input data")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingSigningKey  = errors.New("auth signing key is not configured")
)

// AuthService checks operator credentials and issues session tokens.
type AuthService struct {
	authRepo   repository.Authorization
	signingKey []byte
	ttl        time.Duration
	plaintext  bool
}

func NewAuthService(repo repository.Authorization, opts AuthOptions) *AuthService {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{
		authRepo:   repo,
		signingKey: []byte(opts.SigningKey),
		ttl:        ttl,
		plaintext:  opts.LegacyPlaintext,
	}
}

// TokenClaims identify the operator and the session a token was issued for.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID    int    `json:"user_id"`
	SessionID string `json:"session_id"`
}

// SignUp stores a new operator. The password is bcrypt-hashed unless the
// store runs in legacy plaintext mode.
func (s *AuthService) SignUp(username, password string) (int, error) {
	if !validInput(username) || !validInput(password) {
		return 0, ErrInvalidInput
	}
	secret := password
	if !s.plaintext {
		hash, err := hashPassword(password)
		if err != nil {
			return 0, err
		}
		secret = hash
	}
	return s.authRepo.Create(username, secret)
}

// EnsureUser creates username unless it exists already. Used to seed the
// store from config.
func (s *AuthService) EnsureUser(username, password string) (bool, error) {
	u, err := s.authRepo.GetByUsername(username)
	if err != nil {
		return false, err
	}
	if u != nil {
		return false, nil
	}
	if _, err := s.SignUp(username, password); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return false, nil
		}
		return false, fmt.Errorf("seed user %q: %w", username, err)
	}
	return true, nil
}

// Login checks credentials. Unknown users and wrong passwords both yield
// ErrInvalidCredentials.
func (s *AuthService) Login(username, password string) (models.User, error) {
	if !validInput(username) || !validInput(password) {
		return models.User{}, ErrInvalidInput
	}
	u, err := s.authRepo.GetByUsername(username)
	if err != nil {
		return models.User{}, err
	}
	if u == nil {
		return models.User{}, ErrInvalidCredentials
	}
	if !s.matches(u.Secret, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return *u, nil
}

// GenerateToken issues a signed JWT bound to a session.
func (s *AuthService) GenerateToken(userID int, sessionID string) (string, error) {
	if len(s.signingKey) == 0 {
		return "", ErrMissingSigningKey
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:    userID,
		SessionID: sessionID,
	})
	return token.SignedString(s.signingKey)
}

// ParseToken validates a JWT and returns its claims.
func (s *AuthService) ParseToken(accessToken string) (TokenClaims, error) {
	if len(s.signingKey) == 0 {
		return TokenClaims{}, ErrMissingSigningKey
	}
	token, err := jwt.ParseWithClaims(accessToken, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return TokenClaims{}, err
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return TokenClaims{}, ErrInvalidToken
	}
	return *claims, nil
}

func (s *AuthService) matches(secret, password string) bool {
	if s.plaintext {
		return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
	}
	return verifyPassword(secret, password) == nil
}

func validInput(s string) bool {
	return strings.TrimSpace(s) != ""
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
