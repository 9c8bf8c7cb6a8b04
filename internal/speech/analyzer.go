// Package speech derives fluency metrics from transcripts. The analyzer is a
// stand-in for a real ML model: it scores simple disfluency patterns in the
// text and mixes in a small amount of seeded jitter.
package speech

import (
	"encoding/json"
	"math"
	"math/rand"
	"strings"
	"sync"

	"gorm.io/datatypes"

	"github.com/speechpath/speechpath-server/internal/domain"
)

// FallbackSpeechRate is reported when the audio duration is zero or unknown.
const FallbackSpeechRate = 150.0

// StutterEvent is a display-only marker on the analysis timeline.
type StutterEvent struct {
	Timestamp float64 `json:"timestamp"`
	Type      string  `json:"type"`
	Word      string  `json:"word,omitempty"`
	Duration  float64 `json:"duration"`
}

type analysisData struct {
	StutteringEvents []StutterEvent `json:"stuttering_events"`
	ConfidenceScore  float64        `json:"confidence_score"`
	ProcessingMethod string         `json:"processing_method"`
}

// Analyzer computes metrics from a transcript. All randomness flows through
// a single seeded source so results are reproducible in tests.
type Analyzer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewAnalyzer(seed int64) *Analyzer {
	return &Analyzer{rnd: rand.New(rand.NewSource(seed))}
}

// Analyze derives the full metric set from a transcript and the recording
// duration in seconds. A zero duration yields the fallback speech rate
// rather than a division by zero.
func (a *Analyzer) Analyze(transcript string, durationSeconds float64) *domain.AnalysisResults {
	a.mu.Lock()
	defer a.mu.Unlock()

	words := strings.Fields(transcript)
	totalWords := len(words)

	repetitions := countRepetitions(words)
	prolongations := countProlongations(words)
	blocks := countBlocks(words)

	speechRate := FallbackSpeechRate
	if durationSeconds > 0 {
		speechRate = float64(totalWords) / (durationSeconds / 60.0)
	}

	fluency := 10.0
	if speechRate < 100 || speechRate > 200 {
		fluency -= 2.0
	}
	fluency -= math.Min(float64(repetitions)*0.5, 2.0)
	fluency -= math.Min(float64(prolongations)*0.5, 1.5)
	fluency -= math.Min(float64(blocks)*0.75, 1.5)
	fluency = clamp(fluency, 1.0, 10.0)

	stuttered := repetitions + prolongations + blocks
	if stuttered > 0 {
		stuttered += a.rnd.Intn(3)
	}
	if stuttered > totalWords {
		stuttered = totalWords
	}

	percentage := 0.0
	if totalWords > 0 {
		percentage = round1(float64(stuttered) / float64(totalWords) * 100)
	}

	events := a.buildEvents(words, durationSeconds)

	return &domain.AnalysisResults{
		StutteringDetected:   stuttered > 0,
		StutteringPercentage: percentage,
		TotalWords:           totalWords,
		StutteredWords:       stuttered,
		AveragePauseDuration: round2(0.2 + a.rnd.Float64()*0.5),
		SpeechRate:           round1(speechRate),
		FluencyScore:         round1(fluency),
		Data:                 a.marshalData(events),
	}
}

// Fallback returns the fixed-shape synthetic result used when transcription
// fails. The pipeline never stalls on the upstream service.
func (a *Analyzer) Fallback() *domain.AnalysisResults {
	events := []StutterEvent{
		{Timestamp: 2.3, Type: "repetition", Word: "the", Duration: 0.4},
		{Timestamp: 5.7, Type: "prolongation", Word: "speech", Duration: 0.6},
		{Timestamp: 12.1, Type: "block", Duration: 0.8},
	}
	return &domain.AnalysisResults{
		StutteringDetected:   true,
		StutteringPercentage: 15.2,
		TotalWords:           120,
		StutteredWords:       18,
		AveragePauseDuration: 0.45,
		SpeechRate:           95.5,
		FluencyScore:         6.5,
		Data:                 a.marshalData(events),
	}
}

func (a *Analyzer) buildEvents(words []string, durationSeconds float64) []StutterEvent {
	span := durationSeconds
	if span <= 0 {
		span = 30.0
	}

	events := []StutterEvent{}
	for i := 1; i < len(words); i++ {
		if sameWord(words[i-1], words[i]) {
			events = append(events, StutterEvent{
				Timestamp: timestampFor(i, len(words), span),
				Type:      "repetition",
				Word:      normalize(words[i]),
				Duration:  round2(0.2 + a.rnd.Float64()*0.5),
			})
		}
	}
	for i, w := range words {
		if hasProlongation(w) {
			events = append(events, StutterEvent{
				Timestamp: timestampFor(i, len(words), span),
				Type:      "prolongation",
				Word:      normalize(w),
				Duration:  round2(0.3 + a.rnd.Float64()*0.6),
			})
		}
		if isBrokenWord(w) {
			events = append(events, StutterEvent{
				Timestamp: timestampFor(i, len(words), span),
				Type:      "block",
				Word:      normalize(w),
				Duration:  round2(0.4 + a.rnd.Float64()*0.7),
			})
		}
	}
	return events
}

func (a *Analyzer) marshalData(events []StutterEvent) datatypes.JSON {
	data := analysisData{
		StutteringEvents: events,
		ConfidenceScore:  round2(0.85 + a.rnd.Float64()*0.1),
		ProcessingMethod: "mock_analyzer_v1.0",
	}
	b, _ := json.Marshal(data)
	return datatypes.JSON(b)
}

// countRepetitions counts adjacent duplicate words, compared
// case-insensitively with punctuation stripped.
func countRepetitions(words []string) int {
	count := 0
	for i := 1; i < len(words); i++ {
		if sameWord(words[i-1], words[i]) {
			count++
		}
	}
	return count
}

// countProlongations counts words containing a run of three or more
// identical letters ("sssingle").
func countProlongations(words []string) int {
	count := 0
	for _, w := range words {
		if hasProlongation(w) {
			count++
		}
	}
	return count
}

// countBlocks counts broken words of the form "w-word".
func countBlocks(words []string) int {
	count := 0
	for _, w := range words {
		if isBrokenWord(w) {
			count++
		}
	}
	return count
}

func sameWord(a, b string) bool {
	na, nb := normalize(a), normalize(b)
	return na != "" && strings.EqualFold(na, nb)
}

func normalize(w string) string {
	return strings.Trim(strings.ToLower(w), ".,!?;:\"'")
}

func hasProlongation(w string) bool {
	run := 1
	var prev rune
	for _, c := range strings.ToLower(w) {
		if c == prev && c >= 'a' && c <= 'z' {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 1
		}
		prev = c
	}
	return false
}

func isBrokenWord(w string) bool {
	w = strings.ToLower(w)
	return len(w) >= 3 && w[1] == '-' && w[0] == w[2]
}

func timestampFor(index, total int, span float64) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(index) / float64(total) * span)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
