package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/trip-trio/trip-planner-api/internal/domain"
	"github.com/trip-trio/trip-planner-api/internal/ports/out/clock"
	"github.com/trip-trio/trip-planner-api/internal/ports/out/localstore"
)

const minPasswordLength = 6

// Options configures session issuance and the simulated credential check.
type Options struct {
	SessionSecret string
	SessionTTL    time.Duration
	// Delay is slept before every credential check to mimic a real identity
	// provider round trip. Zero disables it.
	Delay time.Duration
}

// Service is a mock identity provider. Any email containing '@' paired with
// a long-enough password authenticates; the user record is fabricated from
// the email and persisted so later sessions restore it.
type Service struct {
	store localstore.Store
	clock clock.Clock
	opts  Options

	newUserID func() domain.UserID
}

func NewService(store localstore.Store, clk clock.Clock, opts Options) *Service {
	return &Service{
		store: store,
		clock: clk,
		opts:  opts,
		newUserID: func() domain.UserID {
			return domain.UserID(uuid.NewString())
		},
	}
}

// SetNewUserIDForTest overrides user ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewUserIDForTest(fn func() domain.UserID) {
	if fn != nil {
		s.newUserID = fn
	}
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	if err := s.checkCredentials(ctx, in.Email, in.Password); err != nil {
		return Session{}, err
	}

	u := s.fabricateUser(in.Email, "")
	if err := s.store.SaveUser(ctx, u); err != nil {
		return Session{}, fmt.Errorf("persist user: %w", err)
	}

	tok, err := s.issueToken(u)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: tok}, nil
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (Session, error) {
	if err := s.checkCredentials(ctx, in.Email, in.Password); err != nil {
		return Session{}, err
	}

	u := s.fabricateUser(in.Email, in.Name)
	if err := s.store.SaveUser(ctx, u); err != nil {
		return Session{}, fmt.Errorf("persist user: %w", err)
	}

	tok, err := s.issueToken(u)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: tok}, nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.ClearUser(ctx); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	return nil
}

// CurrentUser restores the persisted session user, if any.
func (s *Service) CurrentUser(ctx context.Context) (domain.User, error) {
	u, err := s.store.LoadUser(ctx)
	if errors.Is(err, localstore.ErrNotFound) {
		return domain.User{}, &Error{Status: 401, Code: "UNAUTHENTICATED", Message: "no active session"}
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *Service) checkCredentials(ctx context.Context, email, password string) error {
	if !strings.Contains(email, "@") {
		return &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "invalid credentials",
			Details: map[string]any{"email": "must contain '@'"},
		}
	}
	if len(password) < minPasswordLength {
		return &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "invalid credentials",
			Details: map[string]any{"password": fmt.Sprintf("must be at least %d characters", minPasswordLength)},
		}
	}

	if s.opts.Delay > 0 {
		t := time.NewTimer(s.opts.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Service) fabricateUser(email, name string) domain.User {
	name = domain.NormalizeHumanName(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return domain.User{
		ID:    s.newUserID(),
		Email: strings.TrimSpace(email),
		Name:  name,
	}
}

type sessionClaims struct {
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(u domain.User) (string, error) {
	now := s.clock.Now()
	claims := sessionClaims{
		Email:  u.Email,
		Name:   u.Name,
		Avatar: u.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.SessionTTL)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.SessionSecret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return tok, nil
}

// VerifyToken validates a bearer token and returns the user it names.
func (s *Service) VerifyToken(tokenString string) (domain.User, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.opts.SessionSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return domain.User{}, &Error{Status: 401, Code: "UNAUTHENTICATED", Message: "invalid session token"}
	}
	return domain.User{
		ID:     domain.UserID(claims.Subject),
		Email:  claims.Email,
		Name:   claims.Name,
		Avatar: claims.Avatar,
	}, nil
}
