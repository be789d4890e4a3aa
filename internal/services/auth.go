package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// IdentityProvider maps credentials to users.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (string, *models.User, error)
	Verify(ctx context.Context, token string) (*models.User, error)
	SignOut(ctx context.Context, token string) error
}

type AuthService struct {
	DB *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

var _ IdentityProvider = (*AuthService)(nil)

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalidArgument("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", invalidArgument("invalid email address")
	}
	return email, nil
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, invalidArgument("password must be at least 6 characters")
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, dependency("failed checking existing user", err)
	}
	if count > 0 {
		return nil, conflict("email already registered", nil)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, dependency("failed hashing password", err)
	}

	user := models.User{Email: email, PasswordHash: hash}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, conflict("email already registered", err)
		}
		return nil, dependency("failed creating user", err)
	}
	return &user, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, invalidArgument("email and password are required")
	}

	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, denied("invalid credentials")
	}
	if err != nil {
		return "", nil, dependency("failed loading user", err)
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		return "", nil, denied("invalid credentials")
	}

	token, _, err := utils.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, dependency("failed generating token", err)
	}
	return token, &user, nil
}

func (s *AuthService) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := utils.ValidateToken(token)
	if err != nil {
		return nil, denied("invalid or expired token")
	}

	if claims.ID != "" {
		var revoked int64
		if err := s.DB.WithContext(ctx).Model(&models.RevokedToken{}).
			Where("token_id = ?", claims.ID).Count(&revoked).Error; err != nil {
			return nil, dependency("failed checking token revocation", err)
		}
		if revoked > 0 {
			return nil, denied("token has been revoked")
		}
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, denied("user not found")
		}
		return nil, dependency("failed loading user", err)
	}
	return &user, nil
}

// SignOut revokes the token's jti until the token would have expired anyway.
// Expired revocations are pruned on the way.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := utils.ValidateToken(token)
	if err != nil {
		return denied("invalid or expired token")
	}
	if claims.ID == "" {
		return nil
	}

	expiresAt := time.Now().Add(utils.TokenTTL())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	revoked := models.RevokedToken{TokenID: claims.ID, ExpiresAt: expiresAt.UTC()}
	if err := s.DB.WithContext(ctx).Create(&revoked).Error; err != nil && !isDuplicateKey(err) {
		return dependency("failed revoking token", err)
	}

	if err := s.DB.WithContext(ctx).Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.RevokedToken{}).Error; err != nil {
		return dependency("failed pruning revoked tokens", err)
	}
	return nil
}
