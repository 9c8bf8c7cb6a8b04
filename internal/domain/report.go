package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ReportType string

const (
	ReportTypeStandard ReportType = "standard"
	ReportTypeDetailed ReportType = "detailed"
	ReportTypeSummary  ReportType = "summary"
)

// ValidReportType reports whether t is a supported report type.
func ValidReportType(t ReportType) bool {
	return t == ReportTypeStandard || t == ReportTypeDetailed || t == ReportTypeSummary
}

// Report is a clinical report generated from a completed analysis. Content
// snapshots the analysis results by value at generation time, so the report
// stays readable after the source audio or analysis is deleted.
type Report struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           uuid.UUID  `json:"userId" gorm:"type:uuid;index;not null"`
	SpeechAnalysisID uuid.UUID  `json:"speechAnalysisId" gorm:"type:uuid;index;not null"`
	Title            string     `json:"title" gorm:"not null"`
	Summary          string     `json:"summary" gorm:"type:text"`
	Recommendations  string     `json:"recommendations" gorm:"type:text"`
	DetailedFindings string     `json:"detailedFindings" gorm:"type:text"`
	ReportType       ReportType `json:"reportType" gorm:"type:varchar(20);not null;default:'standard'"`
	GeneratedBy      string     `json:"generatedBy"`

	Content  datatypes.JSON `json:"content" gorm:"type:jsonb"`
	Sections datatypes.JSON `json:"sections" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
