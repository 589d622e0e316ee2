package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/gamehouse/models"
	"github.com/cppla/gamehouse/utils"
)

// Identity is the resolved caller of a request.
type Identity struct {
	UserID   uint
	Username string
	Role     string
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

// TokenIssuer issues and verifies signed bearer tokens.
type TokenIssuer interface {
	GenerateToken(userID uint, username string) (string, time.Time, error)
	ParseToken(token string) (*utils.Claims, error)
}

// TokenRevoker tracks tokens invalidated by logout.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) bool
}

// IdentityService resolves bearer tokens to live users.
type IdentityService struct {
	db      *gorm.DB
	tokens  TokenIssuer
	revoked TokenRevoker
}

// NewIdentityService creates an IdentityService.
func NewIdentityService(db *gorm.DB, tokens TokenIssuer, revoked TokenRevoker) *IdentityService {
	return &IdentityService{db: db, tokens: tokens, revoked: revoked}
}

// Authenticate verifies token and loads the user it names. The role comes from
// the database, never from the token, so promotions apply immediately.
func (s *IdentityService) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}
	if s.revoked != nil && s.revoked.IsRevoked(ctx, token) {
		return Identity{}, ErrInvalidToken
	}
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "username", "role").First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, ErrInvalidToken
		}
		return Identity{}, err
	}
	return Identity{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}
