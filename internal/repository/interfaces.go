package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/speechpath/speechpath-server/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type AuthTokenRepository interface {
	Create(ctx context.Context, token *domain.AuthToken) error
	// GetByHash looks up an unused token of the given kind by its SHA-256 hash.
	GetByHash(ctx context.Context, hash string, kind domain.TokenKind) (*domain.AuthToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID, kind domain.TokenKind) error
	DeleteExpired(ctx context.Context) error
}

type AudioFileRepository interface {
	Create(ctx context.Context, file *domain.AudioFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AudioFile, error)
	// ListByUserID returns the user's files newest-first.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.AudioFile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AnalysisRepository interface {
	Create(ctx context.Context, analysis *domain.SpeechAnalysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SpeechAnalysis, error)
	// ListByUserID returns the user's analyses newest-first.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.SpeechAnalysis, error)
	// LatestByAudioFileID returns the most recent analysis for a file
	// regardless of status.
	LatestByAudioFileID(ctx context.Context, audioFileID uuid.UUID) (*domain.SpeechAnalysis, error)
	// LatestCompletedByAudioFileID returns the most recent completed analysis
	// for a file.
	LatestCompletedByAudioFileID(ctx context.Context, audioFileID uuid.UUID) (*domain.SpeechAnalysis, error)
	// Complete transitions processing -> completed and stores the derived
	// metrics. Returns domain.ErrAnalysisTerminal if the record already
	// reached a terminal state.
	Complete(ctx context.Context, id uuid.UUID, results *domain.AnalysisResults) error
	// Fail transitions processing -> failed, storing only the error message.
	// Returns domain.ErrAnalysisTerminal if the record already reached a
	// terminal state.
	Fail(ctx context.Context, id uuid.UUID, message string) error
}

type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	// ListByUserID returns the user's reports newest-first.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	User      UserRepository
	AuthToken AuthTokenRepository
	AudioFile AudioFileRepository
	Analysis  AnalysisRepository
	Report    ReportRepository
}
