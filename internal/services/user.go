package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"photo-points-backend/internal/apperr"
	"photo-points-backend/internal/config"
	"photo-points-backend/internal/models"
	"photo-points-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	keyLength    = 20
	keyChars     = "abcdefghijklmnopqrstuvwxyz0123456789"
	userIDPrefix = "user_"
)

// Session is returned to a client after sign-up or login
type Session struct {
	SessionKey string `json:"session_key"`
	WSToken    string `json:"ws_token"`
}

// UserService handles accounts, sessions and preferences
type UserService struct {
	users          UserStore
	history        HistoryStore
	jwtSecret      string
	sessionTimeout time.Duration
	wsTokenTTL     time.Duration
	now            func() time.Time
}

// NewUserService creates a new user service
func NewUserService(users UserStore, history HistoryStore, cfg config.SessionConfig) *UserService {
	return &UserService{
		users:          users,
		history:        history,
		jwtSecret:      cfg.Secret,
		sessionTimeout: cfg.Timeout,
		wsTokenTTL:     cfg.WSTokenTTL,
		now:            time.Now,
	}
}

// generateKey generates a random alphanumeric key
func generateKey() (string, error) {
	key := make([]byte, keyLength)
	for i := range key {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(keyChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate key: %w", err)
		}
		key[i] = keyChars[n.Int64()]
	}
	return string(key), nil
}

// SignUp creates an account and logs it in
func (s *UserService) SignUp(ctx context.Context, email, password string) (*Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.Validation(MsgInvalidPassword)
		}
		return nil, apperr.Upstream("failed to hash password", err)
	}

	userKey, err := generateKey()
	if err != nil {
		return nil, apperr.Upstream("failed to generate user id", err)
	}

	now := s.now().UTC()
	user := &models.User{
		Email:        email,
		Password:     string(hash),
		CreatedAt:    now,
		AccountType:  models.AccountTypeEmail,
		UserID:       userIDPrefix + userKey,
		LastAccessed: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(MsgUserExists)
		}
		return nil, apperr.Upstream("failed to create user", err)
	}

	log.Info().Str("user_email", email).Msg("User created")
	return s.startSession(ctx, email)
}

// Login verifies the password and issues a new session key
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthenticated()
		}
		return nil, apperr.Upstream("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Unauthenticated()
	}

	return s.startSession(ctx, email)
}

func (s *UserService) startSession(ctx context.Context, email string) (*Session, error) {
	now := s.now().UTC()
	if err := s.history.RecordLogin(ctx, email, now); err != nil {
		return nil, apperr.Upstream("failed to record login", err)
	}

	key, err := generateKey()
	if err != nil {
		return nil, apperr.Upstream("failed to generate session key", err)
	}
	if err := s.users.AddSessionKey(ctx, email, key, now); err != nil {
		return nil, apperr.Upstream("failed to store session key", err)
	}

	token, err := s.GenerateJWT(email)
	if err != nil {
		return nil, apperr.Upstream("failed to issue realtime token", err)
	}
	return &Session{SessionKey: key, WSToken: token}, nil
}

// Authenticate checks the session key and refreshes the user's last accessed time
func (s *UserService) Authenticate(ctx context.Context, email, sessionKey string) (*models.User, error) {
	user, err := s.users.TouchSession(ctx, email, sessionKey, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthenticated()
		}
		return nil, apperr.Upstream("failed to authenticate session", err)
	}
	return user, nil
}

// Logout removes every session key of the user
func (s *UserService) Logout(ctx context.Context, email string) error {
	if err := s.users.ClearSessions(ctx, email); err != nil {
		return apperr.Upstream("failed to clear sessions", err)
	}
	return nil
}

// PurgeInactiveSessions clears session keys of users idle longer than the session timeout
func (s *UserService) PurgeInactiveSessions(ctx context.Context) (int64, error) {
	n, err := s.users.PurgeInactive(ctx, s.now().UTC().Add(-s.sessionTimeout))
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return n, nil
}

// SetPreferences replaces the profile of the user
func (s *UserService) SetPreferences(ctx context.Context, email string, prefs models.Preferences, pushToken *string) error {
	if err := s.users.SetPreferences(ctx, email, prefs, pushToken); err != nil {
		return apperr.Upstream("failed to set preferences", err)
	}
	return nil
}

// GenerateJWT generates a realtime channel token for a user
func (s *UserService) GenerateJWT(email string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": email,
		"exp": now.Add(s.wsTokenTTL).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a realtime channel token and returns the user email
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	email, err := token.Claims.GetSubject()
	if err != nil || email == "" {
		return "", fmt.Errorf("subject not found in token")
	}

	return email, nil
}
