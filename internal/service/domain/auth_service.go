package domain

import (
	"context"
	"time"

	"github.com/qs-lzh/cinema-booking/internal/auth"
	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

// RevocationStore remembers logged out tokens by hash until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

// LoginLimiter counts login attempts per key inside a window.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	// Authenticate parses a bearer token and rejects revoked ones.
	Authenticate(ctx context.Context, rawToken string) (*auth.Claims, error)
}

type LoginResult struct {
	auth.Token
	User *model.User `json:"user"`
}

type authService struct {
	userService UserService
	tokens      *auth.TokenManager
	revocations RevocationStore
	limiter     LoginLimiter
}

var _ AuthService = (*authService)(nil)

// NewAuthService accepts a nil limiter, in which case logins are not limited.
func NewAuthService(userService UserService, tokens *auth.TokenManager, revocations RevocationStore, limiter LoginLimiter) *authService {
	if limiter == nil {
		limiter = unlimited{}
	}
	return &authService{
		userService: userService,
		tokens:      tokens,
		revocations: revocations,
		limiter:     limiter,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	key := normalizeEmail(email)
	allowed, err := s.limiter.Allow(ctx, key)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrTooManyLoginAttempts
	}

	user, err := s.userService.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Reset(ctx, key); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *authService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.Authenticate(ctx, rawToken)
	if err != nil {
		return err
	}
	return s.revocations.Revoke(ctx, auth.HashToken(rawToken), claims.ExpiresAt.Time)
}

func (s *authService) Authenticate(ctx context.Context, rawToken string) (*auth.Claims, error) {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revocations.IsRevoked(ctx, auth.HashToken(rawToken))
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

type unlimited struct{}

func (unlimited) Allow(context.Context, string) (bool, error) { return true, nil }
func (unlimited) Reset(context.Context, string) error         { return nil }

// dbRevocationStore keeps the revocation list in the database when no redis
// is configured. Expired rows are purged by a background job.
type dbRevocationStore struct {
	repo  repository.RevokedTokenRepo
	clock util.Clock
}

var _ RevocationStore = (*dbRevocationStore)(nil)

func NewDBRevocationStore(repo repository.RevokedTokenRepo, clock util.Clock) *dbRevocationStore {
	return &dbRevocationStore{
		repo:  repo,
		clock: clock,
	}
}

func (s *dbRevocationStore) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	return s.repo.Revoke(ctx, tokenHash, expiresAt)
}

func (s *dbRevocationStore) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	return s.repo.IsRevoked(ctx, tokenHash, s.clock.Now())
}
