package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechpath/speechpath-server/internal/domain"
)

func TestPDFRenderer_Render(t *testing.T) {
	duration := 42.5
	processedAt := time.Now()

	analysis := &domain.SpeechAnalysis{
		ID:                   uuid.New(),
		Status:               domain.AnalysisStatusCompleted,
		StutteringDetected:   true,
		StutteringPercentage: 12.5,
		TotalWords:           80,
		StutteredWords:       10,
		AveragePauseDuration: 0.4,
		SpeechRate:           160,
		FluencyScore:         7.5,
		AnalysisData:         []byte(`{"stuttering_events":[{"timestamp":2.3,"type":"repetition","word":"the","duration":0.4}],"confidence_score":0.9,"processing_method":"mock_analyzer_v1.0"}`),
		ProcessedAt:          &processedAt,
		CreatedAt:            time.Now(),
	}
	audio := &domain.AudioFile{
		OriginalName: "session.wav",
		Duration:     &duration,
	}
	user := &domain.User{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	}

	pdf, err := NewPDFRenderer().Render(analysis, audio, user)
	require.NoError(t, err)

	assert.Greater(t, len(pdf), 500, "rendered document is suspiciously small")
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestPDFRenderer_RenderWithoutEvents(t *testing.T) {
	analysis := &domain.SpeechAnalysis{
		ID:        uuid.New(),
		Status:    domain.AnalysisStatusCompleted,
		CreatedAt: time.Now(),
	}
	audio := &domain.AudioFile{OriginalName: "(deleted recording)"}
	user := &domain.User{Email: "ada@example.com"}

	pdf, err := NewPDFRenderer().Render(analysis, audio, user)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}
