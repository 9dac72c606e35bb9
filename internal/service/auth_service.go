package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bank "github.com/plightick/kursovaya"
	"github.com/plightick/kursovaya/internal/logger"
	"github.com/plightick/kursovaya/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = time.Hour

// ErrInvalidToken is returned for tokens that fail parsing or validation.
var ErrInvalidToken = errors.New("invalid token")

// AuthService handles login, registration and the HTTP bearer-token glue.
// The login/logout pair is the only writer of the session value.
type AuthService struct {
	users repository.Users
	audit repository.Audit
	state *sessionState
	cfg   Config
	log   *logger.Logger
}

func NewAuthService(users repository.Users, audit repository.Audit, state *sessionState, cfg Config, log *logger.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	return &AuthService{users: users, audit: audit, state: state, cfg: cfg, log: log}
}

// Claims defines the JWT claims issued at login.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

// Login establishes the session. "admin"/"admin" opens an admin session with
// no user record; any other username loads the stored user and compares the
// password hash. Unknown user and wrong password surface as the same
// AuthError on purpose.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	uname := strings.TrimSpace(username)
	token, err := s.login(uname, password)
	recordOutcome(ctx, s.audit, s.log, "login", uname, err, "logged in")
	return token, err
}

func (s *AuthService) login(uname, password string) (string, error) {
	if uname == "" {
		return "", bank.NewValidationError("username is empty")
	}

	if uname == bank.AdminUsername {
		if password != "admin" {
			return "", bank.NewAuthError("invalid administrator password")
		}
		s.state.session = Session{Kind: SessionAdmin}
		return s.issueToken(bank.AdminUsername, true)
	}

	u, err := s.users.Load(uname)
	if err != nil {
		var nf *bank.NotFoundError
		if errors.As(err, &nf) {
			// Do not leak whether the user exists.
			return "", bank.NewAuthError("invalid username or password")
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", bank.NewAuthError("invalid username or password")
	}

	s.state.session = Session{Kind: SessionRegular, User: &u}
	return s.issueToken(uname, false)
}

// Logout tears the session down. Always succeeds.
func (s *AuthService) Logout(ctx context.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	username := s.state.info().Username
	s.state.session = Session{Kind: SessionAnonymous}
	recordOutcome(ctx, s.audit, s.log, "logout", username, nil, "logged out")
}

// Register creates and persists a new user with an empty record graph.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	uname := strings.TrimSpace(username)
	err := s.register(uname, password)
	recordOutcome(ctx, s.audit, s.log, "register", uname, err, "user created")
	return err
}

func (s *AuthService) register(uname, password string) error {
	if uname == "" {
		return bank.NewValidationError("username is empty")
	}
	if s.users.Exists(uname) {
		return bank.NewValidationError("user already exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.Save(bank.User{Username: uname, PasswordHash: string(hash)})
}

// Current reports the session-derived read properties.
func (s *AuthService) Current() SessionInfo {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.state.info()
}

// ParseToken validates a bearer token and returns its claims. The session
// value stays the source of truth; the token only guards the HTTP surface.
func (s *AuthService) ParseToken(accessToken string) (Claims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SigningKey), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return *claims, nil
}

func (s *AuthService) issueToken(username string, admin bool) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username: username,
		Admin:    admin,
	})
	return token.SignedString([]byte(s.cfg.SigningKey))
}
