package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/gamehouse/models"
)

// Hasher turns passwords into stored credentials and checks them.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Profile is the caller's own account with related content.
type Profile struct {
	*models.User
	Favorites []models.Article `json:"favorites"`
	Articles  []models.Article `json:"articles"`
	Comments  []models.Comment `json:"comments"`
}

// ProfileUpdate carries the fields a user may change on their own account.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Password *string
	Bio      *string
	Avatar   *string
}

// AccountService handles registration, login and profile management.
type AccountService struct {
	db          *gorm.DB
	hasher      Hasher
	tokens      TokenIssuer
	revoked     TokenRevoker
	adminSecret string
	log         *zap.Logger
}

// NewAccountService creates an AccountService. adminSecret guards MakeAdmin;
// an empty secret disables elevation entirely.
func NewAccountService(db *gorm.DB, hasher Hasher, tokens TokenIssuer, revoked TokenRevoker, adminSecret string, log *zap.Logger) *AccountService {
	return &AccountService{db: db, hasher: hasher, tokens: tokens, revoked: revoked, adminSecret: adminSecret, log: log}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with the default role and issues a token.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return nil, Validation("username, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, Validation("invalid email address")
	}

	db := s.db.WithContext(ctx)
	if taken, err := s.identityTaken(db, 0, username, email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUserExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := models.User{Username: username, Email: email, PasswordHash: hash, Role: models.RoleUser}
	if err := db.Create(&user).Error; err != nil {
		// A concurrent registration can win the unique index between check and insert.
		if taken, _ := s.identityTaken(db, 0, username, email); taken {
			return nil, ErrUserExists
		}
		return nil, err
	}
	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("email", email))
	return s.issue(&user)
}

// Login verifies the credentials and issues a token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, Validation("email and password are required")
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Info("login failed: unknown email", zap.String("email", email))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Info("login failed: wrong password", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	return s.issue(&user)
}

// Logout revokes token until its natural expiry.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return ErrInvalidToken
	}
	expiresAt := time.Now().Add(time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.revoked.Revoke(ctx, token, expiresAt)
}

// Profile loads the user with favorites, own articles and own comments, newest first.
func (s *AccountService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	p := &Profile{User: &user, Favorites: []models.Article{}, Articles: []models.Article{}, Comments: []models.Comment{}}
	if err := db.Preload("Author", authorColumns).
		Joins("JOIN user_favorites ON user_favorites.article_id = articles.id").
		Where("user_favorites.user_id = ?", userID).
		Order("user_favorites.created_at DESC").
		Find(&p.Favorites).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("Author", authorColumns).Where("author_id = ?", userID).Order("created_at DESC, id DESC").Find(&p.Articles).Error; err != nil {
		return nil, err
	}
	if err := db.Where("author_id = ?", userID).Order("created_at DESC, id DESC").Find(&p.Comments).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProfile applies the non-nil fields of upd to the user.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, upd ProfileUpdate) (*models.User, error) {
	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if name == "" {
			return nil, Validation("username cannot be empty")
		}
		user.Username = name
	}
	if upd.Email != nil {
		email := NormalizeEmail(*upd.Email)
		if !strings.Contains(email, "@") {
			return nil, Validation("invalid email address")
		}
		user.Email = email
	}
	if upd.Password != nil {
		if *upd.Password == "" {
			return nil, Validation("password cannot be empty")
		}
		hash, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.Avatar != nil {
		user.Avatar = strings.TrimSpace(*upd.Avatar)
	}

	if taken, err := s.identityTaken(db, user.ID, user.Username, user.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUserExists
	}
	if err := db.Save(&user).Error; err != nil {
		return nil, err
	}
	s.log.Info("profile updated", zap.Uint("user_id", user.ID))
	return &user, nil
}

// MakeAdmin promotes the user with email to admin when secret matches the configured bootstrap secret.
func (s *AccountService) MakeAdmin(ctx context.Context, email, secret string) (*models.User, error) {
	if s.adminSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.adminSecret)) != 1 {
		s.log.Warn("admin elevation rejected", zap.String("email", email))
		return nil, ErrForbidden
	}
	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := db.Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
		return nil, err
	}
	user.Role = models.RoleAdmin
	s.log.Info("user elevated to admin", zap.Uint("user_id", user.ID))
	return &user, nil
}

func (s *AccountService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// identityTaken reports whether another user (id != exceptID) holds username or email.
func (s *AccountService) identityTaken(db *gorm.DB, exceptID uint, username, email string) (bool, error) {
	var count int64
	q := db.Model(&models.User{}).Where("(username = ? OR email = ?)", username, email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// authorColumns limits preloaded authors to their public projection.
func authorColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "avatar")
}
