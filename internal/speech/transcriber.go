package speech

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Transcriber converts stored audio into text. The real implementation calls
// an external speech-to-text service; callers must tolerate failure and fall
// back to synthetic results.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// sample transcripts with the disfluency patterns the analyzer looks for.
var sampleTranscripts = []string{
	"I I went to the store yesterday and I bought some some groceries for the week",
	"The weather today is really nice and I think we should go for a walk in the park",
	"My name is is John and I am practicing my speech exercises every sssingle day",
	"W-when I talk to people I sometimes feel nervous but I am getting better at it",
	"Reading aloud helps me practice my pronunciation and my speaking rhythm every day",
}

// MockTranscriber stands in for the external transcription service. It
// returns canned transcripts after a short artificial delay.
type MockTranscriber struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	delay time.Duration
}

func NewMockTranscriber(seed int64, delay time.Duration) *MockTranscriber {
	return &MockTranscriber{
		rnd:   rand.New(rand.NewSource(seed)),
		delay: delay,
	}
}

func (t *MockTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if t.delay > 0 {
		select {
		case <-time.After(t.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return sampleTranscripts[t.rnd.Intn(len(sampleTranscripts))], nil
}
