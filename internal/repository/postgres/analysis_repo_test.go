package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechpath/speechpath-server/internal/domain"
	"github.com/speechpath/speechpath-server/internal/repository"
	"github.com/speechpath/speechpath-server/internal/repository/postgres"
	"github.com/speechpath/speechpath-server/internal/testutil"
)

// seedAudioFile creates a user and an owned audio file so analyses satisfy
// their foreign keys.
func seedAudioFile(t *testing.T, repos *repository.Repositories) *domain.AudioFile {
	t.Helper()

	user, _ := testutil.NewUserBuilder().Build(t, repos)

	file := &domain.AudioFile{
		ID:           uuid.New(),
		UserID:       user.ID,
		Filename:     uuid.New().String() + ".wav",
		OriginalName: "session.wav",
		FilePath:     "/tmp/" + uuid.New().String() + ".wav",
		FileSize:     1024,
		MimeType:     "audio/wav",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repos.AudioFile.Create(context.Background(), file))
	return file
}

func newAnalysis(userID, audioFileID uuid.UUID) *domain.SpeechAnalysis {
	return &domain.SpeechAnalysis{
		ID:          uuid.New(),
		UserID:      userID,
		AudioFileID: audioFileID,
		Status:      domain.AnalysisStatusProcessing,
		CreatedAt:   time.Now(),
	}
}

func TestAnalysisRepository_CompleteOnce(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	file := seedAudioFile(t, repos)
	analysis := newAnalysis(file.UserID, file.ID)
	require.NoError(t, repos.Analysis.Create(ctx, analysis))

	results := &domain.AnalysisResults{
		StutteringDetected:   true,
		StutteringPercentage: 12.5,
		TotalWords:           80,
		StutteredWords:       10,
		AveragePauseDuration: 0.4,
		SpeechRate:           160,
		FluencyScore:         7.5,
		Data:                 []byte(`{"processing_method":"mock_analyzer_v1.0"}`),
	}
	require.NoError(t, repos.Analysis.Complete(ctx, analysis.ID, results))

	got, err := repos.Analysis.GetByID(ctx, analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisStatusCompleted, got.Status)
	assert.Equal(t, 7.5, got.FluencyScore)
	assert.NotNil(t, got.ProcessedAt)

	// A second transition must not touch the terminal record.
	err = repos.Analysis.Fail(ctx, analysis.ID, "late failure")
	assert.ErrorIs(t, err, domain.ErrAnalysisTerminal)

	got, err = repos.Analysis.GetByID(ctx, analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisStatusCompleted, got.Status)
	assert.Empty(t, got.ErrorMessage)
}

func TestAnalysisRepository_FailOnce(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	file := seedAudioFile(t, repos)
	analysis := newAnalysis(file.UserID, file.ID)
	require.NoError(t, repos.Analysis.Create(ctx, analysis))

	require.NoError(t, repos.Analysis.Fail(ctx, analysis.ID, "transcription timeout"))

	got, err := repos.Analysis.GetByID(ctx, analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisStatusFailed, got.Status)
	assert.Equal(t, "transcription timeout", got.ErrorMessage)

	err = repos.Analysis.Complete(ctx, analysis.ID, &domain.AnalysisResults{})
	assert.ErrorIs(t, err, domain.ErrAnalysisTerminal)
}

func TestAnalysisRepository_TransitionMissingRecord(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	err := repos.Analysis.Complete(ctx, uuid.New(), &domain.AnalysisResults{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repos.Analysis.Fail(ctx, uuid.New(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalysisRepository_Latest(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	file := seedAudioFile(t, repos)

	first := newAnalysis(file.UserID, file.ID)
	first.CreatedAt = time.Now().Add(-time.Minute)
	require.NoError(t, repos.Analysis.Create(ctx, first))
	require.NoError(t, repos.Analysis.Complete(ctx, first.ID, &domain.AnalysisResults{FluencyScore: 8}))

	second := newAnalysis(file.UserID, file.ID)
	require.NoError(t, repos.Analysis.Create(ctx, second))

	latest, err := repos.Analysis.LatestByAudioFileID(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	completed, err := repos.Analysis.LatestCompletedByAudioFileID(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, completed.ID)

	_, err = repos.Analysis.LatestByAudioFileID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalysisRepository_ListByUserID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	file := seedAudioFile(t, repos)
	other := seedAudioFile(t, repos)

	mine := newAnalysis(file.UserID, file.ID)
	require.NoError(t, repos.Analysis.Create(ctx, mine))
	theirs := newAnalysis(other.UserID, other.ID)
	require.NoError(t, repos.Analysis.Create(ctx, theirs))

	list, err := repos.Analysis.ListByUserID(ctx, file.UserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
}
