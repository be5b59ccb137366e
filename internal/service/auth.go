package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db                 *gorm.DB
	jwtSecret          string
	expireHours        int
	refreshExpireHours int
}

func NewAuthService(db *gorm.DB, jwtSecret string, expireHours, refreshExpireHours int) *AuthService {
	return &AuthService{
		db:                 db,
		jwtSecret:          jwtSecret,
		expireHours:        expireHours,
		refreshExpireHours: refreshExpireHours,
	}
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthResult struct {
	User   *model.User `json:"user"`
	Tokens TokenPair   `json:"tokens"`
}

func (s *AuthService) Register(email, password, firstName, lastName string) (*AuthResult, error) {
	var count int64
	s.db.Model(&model.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("40904:email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	var user model.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("40104:invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("40104:invalid email or password")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("40309:account is deactivated")
	}

	now := time.Now()
	s.db.Model(&user).Update("last_login_at", now)
	user.LastLoginAt = &now

	return s.issueTokens(&user)
}

// Refresh rotates the refresh token: the presented token is deleted and
// a new pair is issued, so each refresh token works exactly once.
func (s *AuthService) Refresh(refreshToken string) (*AuthResult, error) {
	var stored model.RefreshToken
	if err := s.db.Where("token = ?", refreshToken).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("40103:invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		s.db.Delete(&stored)
		return nil, fmt.Errorf("40102:refresh token has expired")
	}

	var user model.User
	if err := s.db.First(&user, stored.UserID).Error; err != nil {
		return nil, fmt.Errorf("40401:user not found")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("40309:account is deactivated")
	}

	if err := s.db.Delete(&stored).Error; err != nil {
		return nil, err
	}
	return s.issueTokens(&user)
}

func (s *AuthService) Logout(refreshToken string) error {
	return s.db.Where("token = ?", refreshToken).Delete(&model.RefreshToken{}).Error
}

func (s *AuthService) issueTokens(user *model.User) (*AuthResult, error) {
	access, expiresAt, err := jwt.GenerateToken(s.jwtSecret, user.ID, user.Email, s.expireHours)
	if err != nil {
		return nil, err
	}

	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Duration(s.refreshExpireHours) * time.Hour),
	}
	if err := s.db.Create(refresh).Error; err != nil {
		return nil, err
	}

	return &AuthResult{
		User: user,
		Tokens: TokenPair{
			AccessToken:  access,
			RefreshToken: refresh.Token,
			ExpiresAt:    expiresAt,
		},
	}, nil
}

func (s *AuthService) GetUserByID(userID uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("40401:user not found")
	}
	return &user, nil
}

type UpdateProfileData struct {
	FirstName *string
	LastName  *string
	Avatar    *string
}

func (s *AuthService) UpdateProfile(userID uint, data UpdateProfileData) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	updates := make(map[string]interface{})
	if data.FirstName != nil {
		updates["first_name"] = *data.FirstName
	}
	if data.LastName != nil {
		updates["last_name"] = *data.LastName
	}
	if data.Avatar != nil {
		updates["avatar"] = *data.Avatar
	}
	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *AuthService) ChangePassword(userID uint, current, next string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return fmt.Errorf("40104:current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Model(user).Update("password_hash", string(hash)).Error
}
