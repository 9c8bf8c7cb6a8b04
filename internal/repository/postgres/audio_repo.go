package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/speechpath/speechpath-server/internal/domain"
)

type audioFileRepository struct {
	db *gorm.DB
}

func NewAudioFileRepository(db *gorm.DB) *audioFileRepository {
	return &audioFileRepository{db: db}
}

func (r *audioFileRepository) Create(ctx context.Context, file *domain.AudioFile) error {
	return translate(r.db.WithContext(ctx).Create(file).Error)
}

func (r *audioFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AudioFile, error) {
	var file domain.AudioFile
	if err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

func (r *audioFileRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.AudioFile, error) {
	var files []*domain.AudioFile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *audioFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.AudioFile{}, "id = ?", id).Error
}
