package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"notesaides-api/internal/domain"
	"notesaides-api/internal/repository"
	"notesaides-api/pkg/hash"
	"notesaides-api/pkg/jwt"

	"github.com/google/uuid"
)

const resetTokenTTL = time.Hour

type AuthService struct {
	userRepo          repository.UserRepository
	jwtSecret         string
	jwtExpiration     time.Duration
	refreshExpiration time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExp, refreshExp time.Duration) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		jwtSecret:         jwtSecret,
		jwtExpiration:     jwtExp,
		refreshExpiration: refreshExp,
	}
}

func (s *AuthService) Register(req *domain.RegisterRequest) (*domain.User, error) {
	exists, err := s.userRepo.EmailExists(req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := hash.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return sanitize(user), nil
}

// sanitize copies the user with credential material stripped, so response
// shaping never touches the stored record.
func sanitize(user *domain.User) *domain.User {
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func (s *AuthService) Login(req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := hash.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := jwt.GenerateToken(user.ID, s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := jwt.GenerateRefreshToken(user.ID, s.refreshExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &domain.LoginResponse{
		User:         sanitize(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtExpiration.Seconds()),
	}, nil
}

func (s *AuthService) RefreshToken(req *domain.RefreshTokenRequest) (*domain.TokenResponse, error) {
	claims, err := jwt.ValidateToken(req.RefreshToken, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}

	accessToken, err := jwt.GenerateToken(claims.UserID, s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtExpiration.Seconds()),
	}, nil
}

// ForgetPassword generates a one-hour reset token for the account. An
// unknown email returns an empty token and no error, so the caller's
// response never reveals whether the account exists.
func (s *AuthService) ForgetPassword(req *domain.ForgetPasswordRequest) (string, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	resetToken := strings.ReplaceAll(uuid.New().String(), "-", "")
	expiry := time.Now().Add(resetTokenTTL)

	user.ResetToken = &resetToken
	user.ResetTokenExpiry = &expiry

	if err := s.userRepo.Update(user); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	// The token would be emailed in production. Logging it keeps local
	// development usable without an SMTP setup.
	log.Printf("[Auth] Password reset requested for %s, token: %s", user.Email, resetToken)

	return resetToken, nil
}

func (s *AuthService) ResetPassword(req *domain.ResetPasswordRequest) error {
	user, err := s.userRepo.FindByResetToken(req.Token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
		return ErrInvalidResetToken
	}

	hashedPassword, err := hash.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hashedPassword
	user.ResetToken = nil
	user.ResetTokenExpiry = nil

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
