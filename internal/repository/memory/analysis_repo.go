package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/speechpath/speechpath-server/internal/domain"
)

type analysisRepository struct {
	s *store
}

func (r *analysisRepository) Create(ctx context.Context, analysis *domain.SpeechAnalysis) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	cp := *analysis
	r.s.analyses[analysis.ID] = &cp
	r.s.nextSeq(analysis.ID)
	return nil
}

func (r *analysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SpeechAnalysis, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.analyses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *analysisRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.SpeechAnalysis, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var analyses []*domain.SpeechAnalysis
	for _, a := range r.s.analyses {
		if a.UserID == userID {
			cp := *a
			analyses = append(analyses, &cp)
		}
	}
	r.sortNewestFirst(analyses)
	return analyses, nil
}

func (r *analysisRepository) LatestByAudioFileID(ctx context.Context, audioFileID uuid.UUID) (*domain.SpeechAnalysis, error) {
	return r.latest(audioFileID, false)
}

func (r *analysisRepository) LatestCompletedByAudioFileID(ctx context.Context, audioFileID uuid.UUID) (*domain.SpeechAnalysis, error) {
	return r.latest(audioFileID, true)
}

func (r *analysisRepository) latest(audioFileID uuid.UUID, completedOnly bool) (*domain.SpeechAnalysis, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var candidates []*domain.SpeechAnalysis
	for _, a := range r.s.analyses {
		if a.AudioFileID != audioFileID {
			continue
		}
		if completedOnly && a.Status != domain.AnalysisStatusCompleted {
			continue
		}
		candidates = append(candidates, a)
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNotFound
	}
	r.sortNewestFirst(candidates)
	cp := *candidates[0]
	return &cp, nil
}

func (r *analysisRepository) Complete(ctx context.Context, id uuid.UUID, results *domain.AnalysisResults) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.analyses[id]
	if !ok {
		return domain.ErrNotFound
	}
	if a.Status.Terminal() {
		return domain.ErrAnalysisTerminal
	}
	now := time.Now()
	a.Status = domain.AnalysisStatusCompleted
	a.StutteringDetected = results.StutteringDetected
	a.StutteringPercentage = results.StutteringPercentage
	a.TotalWords = results.TotalWords
	a.StutteredWords = results.StutteredWords
	a.AveragePauseDuration = results.AveragePauseDuration
	a.SpeechRate = results.SpeechRate
	a.FluencyScore = results.FluencyScore
	a.AnalysisData = results.Data
	a.ProcessedAt = &now
	return nil
}

func (r *analysisRepository) Fail(ctx context.Context, id uuid.UUID, message string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.analyses[id]
	if !ok {
		return domain.ErrNotFound
	}
	if a.Status.Terminal() {
		return domain.ErrAnalysisTerminal
	}
	now := time.Now()
	a.Status = domain.AnalysisStatusFailed
	a.ErrorMessage = message
	a.ProcessedAt = &now
	return nil
}

func (r *analysisRepository) sortNewestFirst(analyses []*domain.SpeechAnalysis) {
	sort.Slice(analyses, func(i, j int) bool {
		return r.s.seqOf[analyses[i].ID] > r.s.seqOf[analyses[j].ID]
	})
}
