package speech

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzer_Analyze(t *testing.T) {
	tests := []struct {
		name           string
		transcript     string
		duration       float64
		wantWords      int
		wantRate       float64
		wantDetected   bool
		wantMinFluency float64
		wantMaxFluency float64
	}{
		{
			name:           "fluent speech at a normal rate",
			transcript:     "reading aloud helps me practice my pronunciation and speaking rhythm",
			duration:       6.0, // 10 words in 6s = 100 wpm
			wantWords:      10,
			wantRate:       100,
			wantDetected:   false,
			wantMinFluency: 10,
			wantMaxFluency: 10,
		},
		{
			name:           "zero duration falls back to the default rate",
			transcript:     "short clip with unknown duration",
			duration:       0,
			wantWords:      5,
			wantRate:       FallbackSpeechRate,
			wantDetected:   false,
			wantMinFluency: 10,
			wantMaxFluency: 10,
		},
		{
			name:           "repeated words are flagged",
			transcript:     "I I went to the store and bought some some groceries today now",
			duration:       5.2, // 13 words, ~150 wpm
			wantWords:      13,
			wantRate:       150,
			wantDetected:   true,
			wantMinFluency: 8,
			wantMaxFluency: 9,
		},
		{
			name:           "prolongations and blocks are flagged",
			transcript:     "w-when I speak every sssingle word takes effort and focus right now okay",
			duration:       5.2,
			wantWords:      13,
			wantRate:       150,
			wantDetected:   true,
			wantMinFluency: 8,
			wantMaxFluency: 9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := NewAnalyzer(42)
			results := analyzer.Analyze(tt.transcript, tt.duration)

			assert.Equal(t, tt.wantWords, results.TotalWords)
			assert.Equal(t, tt.wantRate, results.SpeechRate)
			assert.Equal(t, tt.wantDetected, results.StutteringDetected)
			assert.GreaterOrEqual(t, results.FluencyScore, tt.wantMinFluency)
			assert.LessOrEqual(t, results.FluencyScore, tt.wantMaxFluency)
			assert.LessOrEqual(t, results.StutteredWords, results.TotalWords)
			assert.NotEmpty(t, results.Data)
		})
	}
}

func TestAnalyzer_Analyze_Deterministic(t *testing.T) {
	transcript := "I I went to the store and bought some some sssingle w-wonderful things"

	a := NewAnalyzer(7)
	b := NewAnalyzer(7)

	first := a.Analyze(transcript, 12.5)
	second := b.Analyze(transcript, 12.5)

	assert.Equal(t, first, second, "same seed must produce identical results")
}

func TestAnalyzer_Analyze_FluencyBounds(t *testing.T) {
	// Every disfluency type at once, at a crawling rate: the score must still
	// bottom out at 1.
	transcript := "I I I I sssso sssso w-want w-want to to sssspeak"
	analyzer := NewAnalyzer(1)

	results := analyzer.Analyze(transcript, 600)

	assert.GreaterOrEqual(t, results.FluencyScore, 1.0)
	assert.LessOrEqual(t, results.FluencyScore, 10.0)
	assert.True(t, results.StutteringDetected)
}

func TestAnalyzer_Analyze_EmptyTranscript(t *testing.T) {
	analyzer := NewAnalyzer(1)

	results := analyzer.Analyze("", 10)

	assert.Equal(t, 0, results.TotalWords)
	assert.Equal(t, 0, results.StutteredWords)
	assert.Equal(t, 0.0, results.StutteringPercentage)
	assert.False(t, results.StutteringDetected)
}

func TestAnalyzer_Fallback(t *testing.T) {
	analyzer := NewAnalyzer(1)

	results := analyzer.Fallback()

	assert.True(t, results.StutteringDetected)
	assert.Equal(t, 15.2, results.StutteringPercentage)
	assert.Equal(t, 120, results.TotalWords)
	assert.Equal(t, 18, results.StutteredWords)
	assert.Equal(t, 0.45, results.AveragePauseDuration)
	assert.Equal(t, 95.5, results.SpeechRate)
	assert.Equal(t, 6.5, results.FluencyScore)

	var data analysisData
	require.NoError(t, json.Unmarshal(results.Data, &data))
	assert.Len(t, data.StutteringEvents, 3)
	assert.Equal(t, "mock_analyzer_v1.0", data.ProcessingMethod)
}

func TestCountRepetitions(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  int
	}{
		{"no repetitions", []string{"the", "quick", "fox"}, 0},
		{"single repetition", []string{"I", "I", "went"}, 1},
		{"case insensitive", []string{"The", "the", "end"}, 1},
		{"punctuation stripped", []string{"store,", "store", "now"}, 1},
		{"empty input", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countRepetitions(tt.words))
		})
	}
}

func TestHasProlongation(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"sssingle", true},
		{"hellooo", true},
		{"hello", false},
		{"bookkeeper", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, hasProlongation(tt.word))
		})
	}
}

func TestIsBrokenWord(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"w-when", true},
		{"W-when", true},
		{"t-day", false},
		{"when", false},
		{"a-", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, isBrokenWord(tt.word))
		})
	}
}
