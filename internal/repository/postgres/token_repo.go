package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/speechpath/speechpath-server/internal/domain"
)

type authTokenRepository struct {
	db *gorm.DB
}

func NewAuthTokenRepository(db *gorm.DB) *authTokenRepository {
	return &authTokenRepository{db: db}
}

func (r *authTokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	return translate(r.db.WithContext(ctx).Create(token).Error)
}

func (r *authTokenRepository) GetByHash(ctx context.Context, hash string, kind domain.TokenKind) (*domain.AuthToken, error) {
	var token domain.AuthToken
	err := r.db.WithContext(ctx).
		First(&token, "token_hash = ? AND kind = ? AND used = false", hash, kind).Error
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *authTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&domain.AuthToken{}).
		Where("id = ?", id).
		Update("used", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *authTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.AuthToken{}, "id = ?", id).Error
}

func (r *authTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID, kind domain.TokenKind) error {
	return r.db.WithContext(ctx).
		Delete(&domain.AuthToken{}, "user_id = ? AND kind = ?", userID, kind).Error
}

func (r *authTokenRepository) DeleteExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Delete(&domain.AuthToken{}, "expires_at < ?", time.Now()).Error
}
