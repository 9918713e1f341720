package swap

import (
	"strings"
	"time"

	"skillswap-backend/internal/models"
)

// Side identifies which participant of a session is acting.
type Side string

const (
	SideRequester Side = "requester"
	SideRecipient Side = "recipient"
)

const defaultDurationMinutes = 60

// CreateInput carries the requester-supplied fields of a new swap request.
type CreateInput struct {
	SkillsExchange  models.SkillsExchange
	Message         string
	ScheduledAt     *time.Time
	Format          models.SessionFormat
	DurationMinutes int
}

// NewSession builds a pending swap request between two existing users.
// Participant lookup happens in the handler; both pointers must be non-nil.
func NewSession(requester, recipient *models.User, in CreateInput) (*models.Session, error) {
	if requester.ID == recipient.ID {
		return nil, &ValidationError{Message: "cannot request a swap with yourself"}
	}

	teaching := strings.TrimSpace(in.SkillsExchange.Teaching)
	learning := strings.TrimSpace(in.SkillsExchange.Learning)
	if teaching == "" || learning == "" {
		return nil, &ValidationError{Message: "skills_exchange requires both a teaching and a learning skill"}
	}

	format := in.Format
	if format == "" {
		format = models.FormatVideoCall
	}
	if !format.Valid() {
		return nil, &ValidationError{Message: "invalid session format"}
	}

	duration := in.DurationMinutes
	if duration == 0 {
		duration = defaultDurationMinutes
	}
	if duration < 0 {
		return nil, &ValidationError{Message: "duration_minutes must be positive"}
	}

	return &models.Session{
		RequesterID: requester.ID,
		RecipientID: recipient.ID,
		Requester:   requester,
		Recipient:   recipient,
		SkillsExchange: models.SkillsExchange{
			Teaching: teaching,
			Learning: learning,
		},
		Status:          models.SessionPending,
		Message:         strings.TrimSpace(in.Message),
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: duration,
		Format:          format,
	}, nil
}

// ParticipantSide reports which side of the session the user is on.
func ParticipantSide(s *models.Session, userID string) (Side, bool) {
	switch userID {
	case s.RequesterID:
		return SideRequester, true
	case s.RecipientID:
		return SideRecipient, true
	}
	return "", false
}

// AuthorizeView gates session detail access to the two participants.
func AuthorizeView(s *models.Session, userID string) error {
	if _, ok := ParticipantSide(s, userID); !ok {
		return &AuthorizationError{Message: "not a participant of this session"}
	}
	return nil
}

// ChangeStatus applies a participant-driven status transition. Completion is
// excluded on purpose: sessions complete through feedback submission only.
// A non-empty meetingLink is stored alongside an acceptance.
func ChangeStatus(s *models.Session, actorID string, next models.SessionStatus, meetingLink string) error {
	side, ok := ParticipantSide(s, actorID)
	if !ok {
		return &AuthorizationError{Message: "not a participant of this session"}
	}

	switch next {
	case models.SessionAccepted, models.SessionDeclined:
		if side != SideRecipient {
			return &AuthorizationError{Message: "only the recipient can accept or decline a request"}
		}
		if s.Status != models.SessionPending {
			return &ConflictError{Message: "session is already " + string(s.Status)}
		}
	case models.SessionCancelled:
		if s.Status.Terminal() {
			return &ConflictError{Message: "session is already " + string(s.Status)}
		}
	case models.SessionCompleted:
		return &ValidationError{Message: "sessions complete through feedback submission"}
	default:
		return &ValidationError{Message: "invalid session status"}
	}

	s.Status = next
	if next == models.SessionAccepted && meetingLink != "" {
		s.MeetingLink = meetingLink
	}
	return nil
}
