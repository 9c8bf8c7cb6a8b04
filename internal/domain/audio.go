package domain

import (
	"time"

	"github.com/google/uuid"
)

// AllowedAudioMimeTypes lists the upload content types the API accepts.
var AllowedAudioMimeTypes = map[string]bool{
	"audio/mpeg": true,
	"audio/wav":  true,
	"audio/mp4":  true,
	"audio/m4a":  true,
	"audio/webm": true,
	"audio/ogg":  true,
}

// AudioFile is the metadata row for an uploaded recording. The bytes live on
// local disk at FilePath; rows are immutable after creation apart from
// deletion.
type AudioFile struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"`
	Filename     string    `json:"filename" gorm:"not null"`
	OriginalName string    `json:"originalName" gorm:"not null"`
	FilePath     string    `json:"-" gorm:"not null"`
	FileSize     int64     `json:"fileSize" gorm:"not null"`
	MimeType     string    `json:"mimeType" gorm:"not null"`
	Duration     *float64  `json:"duration"` // seconds, nil when unknown
	CreatedAt    time.Time `json:"createdAt"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

// DurationSeconds returns the known duration or zero.
func (f *AudioFile) DurationSeconds() float64 {
	if f.Duration == nil {
		return 0
	}
	return *f.Duration
}
