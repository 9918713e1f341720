package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionAccepted  SessionStatus = "accepted"
	SessionDeclined  SessionStatus = "declined"
	SessionCancelled SessionStatus = "cancelled"
	SessionCompleted SessionStatus = "completed"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionPending, SessionAccepted, SessionDeclined, SessionCancelled, SessionCompleted:
		return true
	}
	return false
}

// Terminal statuses never transition away, except completed which is
// re-entered by the second feedback submission.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionDeclined, SessionCancelled, SessionCompleted:
		return true
	}
	return false
}

type SessionFormat string

const (
	FormatVideoCall SessionFormat = "video_call"
	FormatInPerson  SessionFormat = "in_person"
	FormatChatBased SessionFormat = "chat_based"
)

func (f SessionFormat) Valid() bool {
	switch f {
	case FormatVideoCall, FormatInPerson, FormatChatBased:
		return true
	}
	return false
}

// SkillsExchange names what the requester teaches and what they learn.
type SkillsExchange struct {
	Teaching string `json:"teaching" validate:"required"`
	Learning string `json:"learning" validate:"required"`
}

// FeedbackRecord is one participant's rating of the other.
type FeedbackRecord struct {
	Rating       int       `json:"rating"`
	Review       string    `json:"review,omitempty"`
	Endorsements []string  `json:"endorsements,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type SessionFeedback struct {
	FromRequester *FeedbackRecord `json:"from_requester,omitempty"`
	FromRecipient *FeedbackRecord `json:"from_recipient,omitempty"`
}

func (f SessionFeedback) Value() (driver.Value, error) {
	return json.Marshal(f)
}

func (f *SessionFeedback) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &f)
}

type Session struct {
	ID          string `json:"id" gorm:"unique;not null"`
	RequesterID string `gorm:"not null;index" json:"requester_id"`
	RecipientID string `gorm:"not null;index" json:"recipient_id"`
	Requester   *User  `gorm:"foreignKey:RequesterID;references:ID" json:"requester,omitempty"`
	Recipient   *User  `gorm:"foreignKey:RecipientID;references:ID" json:"recipient,omitempty"`

	SkillsExchange SkillsExchange `gorm:"serializer:json" json:"skills_exchange"`
	Status         SessionStatus  `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	Message        string         `json:"message,omitempty"`
	ScheduledAt    *time.Time     `json:"scheduled_at,omitempty"`
	// Duration in minutes, converted to hours for the stats counters.
	DurationMinutes int             `gorm:"default:60" json:"duration_minutes"`
	Format          SessionFormat   `gorm:"type:varchar(20);default:video_call" json:"format"`
	MeetingLink     string          `json:"meeting_link,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Feedback        SessionFeedback `gorm:"type:json" json:"feedback"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) (err error) {
	uuidV7, err := uuid.NewV7()
	if err != nil {
		return err
	}
	s.ID = uuidV7.String()
	return
}

func GetSessionByID(db *gorm.DB, id string) (*Session, error) {
	var session Session
	result := db.Preload("Requester").Preload("Recipient").
		Where("id = ?", id).First(&session)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.New("Session not found")
		}
		return nil, result.Error
	}
	return &session, nil
}

// GetSessionsForUser lists sessions the user participates in, newest first.
// An empty status returns all of them.
func GetSessionsForUser(db *gorm.DB, userID string, status SessionStatus) ([]Session, error) {
	query := db.Preload("Requester").Preload("Recipient").
		Where("requester_id = ? OR recipient_id = ?", userID, userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var sessions []Session
	if err := query.Order("created_at DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
