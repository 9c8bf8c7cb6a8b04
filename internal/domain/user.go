package domain

import (
	"time"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountTypePatient   AccountType = "patient"
	AccountTypeTherapist AccountType = "therapist"
)

// ValidAccountType reports whether t is one of the supported account types.
func ValidAccountType(t AccountType) bool {
	return t == AccountTypePatient || t == AccountTypeTherapist
}

type User struct {
	ID              uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email           string      `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash    string      `json:"-" gorm:"not null"`
	FirstName       string      `json:"firstName"`
	LastName        string      `json:"lastName"`
	ProfileImageURL string      `json:"profileImageUrl"`
	AccountType     AccountType `json:"accountType" gorm:"type:varchar(20);not null;default:'patient'"`
	IsEmailVerified bool        `json:"isEmailVerified" gorm:"not null;default:false"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type TokenKind string

const (
	TokenKindRefresh       TokenKind = "refresh"
	TokenKindPasswordReset TokenKind = "password_reset"
)

// AuthToken is an opaque server-side token. Only a SHA-256 digest of the
// token value is stored; the raw value is handed to the client once.
type AuthToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"`
	TokenHash string    `json:"-" gorm:"uniqueIndex;not null"`
	Kind      TokenKind `json:"kind" gorm:"type:varchar(20);not null"`
	Used      bool      `json:"used" gorm:"not null;default:false"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the token's expiry has passed at the given time.
func (t *AuthToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
