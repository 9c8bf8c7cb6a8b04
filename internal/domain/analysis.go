package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AnalysisStatus string

const (
	AnalysisStatusPending    AnalysisStatus = "pending"
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// Terminal reports whether the status is one of the two end states. Terminal
// records are never updated again.
func (s AnalysisStatus) Terminal() bool {
	return s == AnalysisStatusCompleted || s == AnalysisStatusFailed
}

type SpeechAnalysis struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID      `json:"userId" gorm:"type:uuid;index;not null"`
	AudioFileID uuid.UUID      `json:"audioFileId" gorm:"type:uuid;index;not null"`
	Status      AnalysisStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`

	StutteringDetected   bool    `json:"stutteringDetected"`
	StutteringPercentage float64 `json:"stutteringPercentage"`
	TotalWords           int     `json:"totalWords"`
	StutteredWords       int     `json:"stutteredWords"`
	AveragePauseDuration float64 `json:"averagePauseDuration"` // seconds
	SpeechRate           float64 `json:"speechRate"`           // words per minute
	FluencyScore         float64 `json:"fluencyScore"`         // 1..10

	AnalysisData datatypes.JSON `json:"analysisData" gorm:"type:jsonb"`
	ErrorMessage string         `json:"errorMessage,omitempty" gorm:"type:text"`
	ProcessedAt  *time.Time     `json:"processedAt"`
	CreatedAt    time.Time      `json:"createdAt"`

	AudioFile *AudioFile `json:"audioFile,omitempty" gorm:"foreignKey:AudioFileID"`
}

// AnalysisResults carries the derived metrics from a finished computation
// into the storage layer's Complete transition.
type AnalysisResults struct {
	StutteringDetected   bool
	StutteringPercentage float64
	TotalWords           int
	StutteredWords       int
	AveragePauseDuration float64
	SpeechRate           float64
	FluencyScore         float64
	Data                 datatypes.JSON
}
