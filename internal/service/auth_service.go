package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/speechpath/speechpath-server/internal/config"
	"github.com/speechpath/speechpath-server/internal/domain"
	"github.com/speechpath/speechpath-server/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email address already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.AuthTokenRepository
	cfg       *config.Config
}

func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.AuthTokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	AccountType domain.AccountType
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if existing, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	accountType := input.AccountType
	if accountType == "" {
		accountType = domain.AccountTypePatient
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		AccountType:  accountType,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// issueTokens mints an access token and a fresh opaque refresh token. Old
// refresh tokens are revoked first so each login leaves exactly one valid
// refresh token.
func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}

	_ = s.tokenRepo.DeleteByUserID(ctx, user.ID, domain.TokenKindRefresh)

	token := &domain.AuthToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		Kind:      domain.TokenKindRefresh,
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself stays valid until logout or expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, *domain.User, error) {
	token, err := s.tokenRepo.GetByHash(ctx, hashToken(refreshToken), domain.TokenKindRefresh)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, ErrInvalidToken
		}
		return "", nil, err
	}
	if token.Expired(time.Now()) {
		_ = s.tokenRepo.Delete(ctx, token.ID)
		return "", nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return "", nil, ErrInvalidToken
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", nil, err
	}
	return accessToken, user, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.tokenRepo.DeleteByUserID(ctx, userID, domain.TokenKindRefresh)
}

// ForgotPassword issues a reset token for the address. It reports success
// even for unknown addresses so the endpoint does not leak which emails are
// registered; the returned token is empty in that case.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	// Only one valid reset token per user at a time.
	if err := s.tokenRepo.DeleteByUserID(ctx, user.ID, domain.TokenKindPasswordReset); err != nil {
		return "", err
	}

	resetToken, err := newOpaqueToken()
	if err != nil {
		return "", err
	}
	token := &domain.AuthToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(resetToken),
		Kind:      domain.TokenKindPasswordReset,
		ExpiresAt: time.Now().Add(s.cfg.ResetTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return "", err
	}
	return resetToken, nil
}

// ResetPassword consumes a reset token, updates the password, and revokes
// every refresh token so existing sessions must log in again.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	token, err := s.tokenRepo.GetByHash(ctx, hashToken(resetToken), domain.TokenKindPasswordReset)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if token.Expired(time.Now()) {
		_ = s.tokenRepo.Delete(ctx, token.ID)
		return ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return ErrInvalidToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := s.tokenRepo.MarkUsed(ctx, token.ID); err != nil {
		return err
	}
	return s.tokenRepo.DeleteByUserID(ctx, user.ID, domain.TokenKindRefresh)
}

// VerifyResetToken reports whether a reset token is currently usable.
func (s *AuthService) VerifyResetToken(ctx context.Context, resetToken string) bool {
	token, err := s.tokenRepo.GetByHash(ctx, hashToken(resetToken), domain.TokenKindPasswordReset)
	if err != nil {
		return false
	}
	return !token.Expired(time.Now())
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *AuthService) generateAccessToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"type": string(user.AccountType),
		"exp":  time.Now().Add(s.cfg.AccessTokenTTL).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken parses an access token and returns the user id it carries.
func (s *AuthService) ValidateToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

// newOpaqueToken returns 32 random bytes, URL-safe base64 encoded.
func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashToken stores only a digest of opaque tokens, so a leaked database does
// not leak usable credentials.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
