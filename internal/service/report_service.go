package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/speechpath/speechpath-server/internal/domain"
	"github.com/speechpath/speechpath-server/internal/repository"
)

type ReportService struct {
	reportRepo   repository.ReportRepository
	analysisRepo repository.AnalysisRepository
}

func NewReportService(reportRepo repository.ReportRepository, analysisRepo repository.AnalysisRepository) *ReportService {
	return &ReportService{
		reportRepo:   reportRepo,
		analysisRepo: analysisRepo,
	}
}

type CreateReportInput struct {
	SpeechAnalysisID uuid.UUID
	ReportType       domain.ReportType
	Sections         []string
}

var defaultSections = []string{"summary", "recommendations", "detailed_findings"}

// Create builds a report from a completed analysis. The analysis metrics are
// snapshotted by value into the report's content blob, so the report outlives
// its source audio file and analysis.
func (s *ReportService) Create(ctx context.Context, userID uuid.UUID, input CreateReportInput) (*domain.Report, error) {
	analysis, err := s.analysisRepo.GetByID(ctx, input.SpeechAnalysisID)
	if err != nil {
		return nil, err
	}
	if analysis.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if analysis.Status != domain.AnalysisStatusCompleted {
		return nil, ErrAnalysisNotCompleted
	}

	reportType := input.ReportType
	if reportType == "" {
		reportType = domain.ReportTypeStandard
	}
	sections := input.Sections
	if len(sections) == 0 {
		sections = defaultSections
	}

	content, err := snapshotContent(analysis)
	if err != nil {
		return nil, err
	}
	sectionsJSON, err := json.Marshal(sections)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rep := &domain.Report{
		ID:               uuid.New(),
		UserID:           userID,
		SpeechAnalysisID: analysis.ID,
		Title:            fmt.Sprintf("Speech Analysis Report - %s", now.Format("2006-01-02")),
		Summary:          buildSummary(analysis),
		Recommendations:  buildRecommendations(),
		DetailedFindings: buildDetailedFindings(analysis),
		ReportType:       reportType,
		GeneratedBy:      "system",
		Content:          content,
		Sections:         datatypes.JSON(sectionsJSON),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.reportRepo.Create(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *ReportService) Get(ctx context.Context, id, userID uuid.UUID) (*domain.Report, error) {
	rep, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return rep, nil
}

func (s *ReportService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Report, error) {
	return s.reportRepo.ListByUserID(ctx, userID)
}

func (s *ReportService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	return s.reportRepo.Delete(ctx, id)
}

// snapshotContent copies the analysis result fields by value into the
// report's JSONB blob.
func snapshotContent(analysis *domain.SpeechAnalysis) (datatypes.JSON, error) {
	snapshot := map[string]interface{}{
		"speech_analysis_id":     analysis.ID.String(),
		"audio_file_id":          analysis.AudioFileID.String(),
		"stuttering_detected":    analysis.StutteringDetected,
		"stuttering_percentage":  analysis.StutteringPercentage,
		"total_words":            analysis.TotalWords,
		"stuttered_words":        analysis.StutteredWords,
		"average_pause_duration": analysis.AveragePauseDuration,
		"speech_rate":            analysis.SpeechRate,
		"fluency_score":          analysis.FluencyScore,
		"analysis_data":          json.RawMessage(analysis.AnalysisData),
	}
	b, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func buildSummary(analysis *domain.SpeechAnalysis) string {
	if analysis.StutteringDetected {
		return "Speech analysis detected stuttering patterns in the audio sample."
	}
	return "Speech analysis detected no significant stuttering in the audio sample."
}

func buildRecommendations() string {
	return `1. Continue monitoring speech patterns during daily activities
2. Practice controlled breathing techniques during speech
3. Consider consultation with a speech-language pathologist
4. Regular follow-up assessments recommended`
}

func buildDetailedFindings(analysis *domain.SpeechAnalysis) string {
	severity := "mild"
	if analysis.StutteringPercentage > 10 {
		severity = "moderate"
	}
	return fmt.Sprintf(`Analysis Results:
- Total words analyzed: %d
- Stuttering events detected: %d
- Stuttering percentage: %.1f%%
- Average pause duration: %.2fs
- Speech rate: %.1f words per minute

The analysis indicates %s stuttering patterns.`,
		analysis.TotalWords,
		analysis.StutteredWords,
		analysis.StutteringPercentage,
		analysis.AveragePauseDuration,
		analysis.SpeechRate,
		severity,
	)
}
