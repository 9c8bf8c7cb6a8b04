package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/speechpath/speechpath-server/internal/domain"
)

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *analysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(ctx context.Context, analysis *domain.SpeechAnalysis) error {
	return translate(r.db.WithContext(ctx).Create(analysis).Error)
}

func (r *analysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SpeechAnalysis, error) {
	var analysis domain.SpeechAnalysis
	if err := r.db.WithContext(ctx).First(&analysis, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &analysis, nil
}

func (r *analysisRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.SpeechAnalysis, error) {
	var analyses []*domain.SpeechAnalysis
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&analyses).Error
	if err != nil {
		return nil, err
	}
	return analyses, nil
}

func (r *analysisRepository) LatestByAudioFileID(ctx context.Context, audioFileID uuid.UUID) (*domain.SpeechAnalysis, error) {
	var analysis domain.SpeechAnalysis
	err := r.db.WithContext(ctx).
		Where("audio_file_id = ?", audioFileID).
		Order("created_at DESC").
		First(&analysis).Error
	if err != nil {
		return nil, translate(err)
	}
	return &analysis, nil
}

func (r *analysisRepository) LatestCompletedByAudioFileID(ctx context.Context, audioFileID uuid.UUID) (*domain.SpeechAnalysis, error) {
	var analysis domain.SpeechAnalysis
	err := r.db.WithContext(ctx).
		Where("audio_file_id = ? AND status = ?", audioFileID, domain.AnalysisStatusCompleted).
		Order("created_at DESC").
		First(&analysis).Error
	if err != nil {
		return nil, translate(err)
	}
	return &analysis, nil
}

// Complete is a conditional update: the WHERE clause only matches transient
// records, so a terminal record is never overwritten even under concurrent
// writers.
func (r *analysisRepository) Complete(ctx context.Context, id uuid.UUID, results *domain.AnalysisResults) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&domain.SpeechAnalysis{}).
		Where("id = ? AND status IN ?", id, transientStatuses()).
		Updates(map[string]interface{}{
			"status":                 domain.AnalysisStatusCompleted,
			"stuttering_detected":    results.StutteringDetected,
			"stuttering_percentage":  results.StutteringPercentage,
			"total_words":            results.TotalWords,
			"stuttered_words":        results.StutteredWords,
			"average_pause_duration": results.AveragePauseDuration,
			"speech_rate":            results.SpeechRate,
			"fluency_score":          results.FluencyScore,
			"analysis_data":          results.Data,
			"processed_at":           now,
		})
	return r.transitionResult(ctx, id, res)
}

func (r *analysisRepository) Fail(ctx context.Context, id uuid.UUID, message string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&domain.SpeechAnalysis{}).
		Where("id = ? AND status IN ?", id, transientStatuses()).
		Updates(map[string]interface{}{
			"status":        domain.AnalysisStatusFailed,
			"error_message": message,
			"processed_at":  now,
		})
	return r.transitionResult(ctx, id, res)
}

func (r *analysisRepository) transitionResult(ctx context.Context, id uuid.UUID, res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// Nothing matched: either the record is gone or already terminal.
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrAnalysisTerminal
}

func transientStatuses() []domain.AnalysisStatus {
	return []domain.AnalysisStatus{domain.AnalysisStatusPending, domain.AnalysisStatusProcessing}
}
