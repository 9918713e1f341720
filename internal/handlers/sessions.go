package handlers

import (
	"fmt"
	"net/http"
	"time"

	"skillswap-backend/internal/common"
	"skillswap-backend/internal/models"
	"skillswap-backend/internal/notifications"
	"skillswap-backend/internal/swap"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// SessionHandler serves the swap session lifecycle.
type SessionHandler struct {
	common.ServerState
}

func NewSessionHandler(state common.ServerState) *SessionHandler {
	return &SessionHandler{ServerState: state}
}

type CreateSessionRequest struct {
	RecipientID     string                `json:"recipient_id" validate:"required"`
	SkillsExchange  models.SkillsExchange `json:"skills_exchange" validate:"required"`
	Message         string                `json:"message"`
	ScheduledAt     *time.Time            `json:"scheduled_at"`
	Format          models.SessionFormat  `json:"format"`
	DurationMinutes int                   `json:"duration_minutes"`
}

type UpdateSessionStatusRequest struct {
	Status      models.SessionStatus `json:"status" validate:"required"`
	MeetingLink string               `json:"meeting_link"`
}

type SubmitFeedbackRequest struct {
	Rating       int      `json:"rating" validate:"required"`
	Review       string   `json:"review"`
	Endorsements []string `json:"endorsements"`
}

// CreateSession opens a pending swap request towards another user.
func (sh *SessionHandler) CreateSession(c echo.Context) error {
	user, ok := sh.getAuthenticatedUserFromJWT(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	req := new(CreateSessionRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	recipient, err := models.GetUserByID(sh.DB, req.RecipientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Recipient not found")
	}

	session, err := swap.NewSession(user, recipient, swap.CreateInput{
		SkillsExchange:  req.SkillsExchange,
		Message:         req.Message,
		ScheduledAt:     req.ScheduledAt,
		Format:          req.Format,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return domainHTTPError(err)
	}

	if err := sh.DB.Create(session).Error; err != nil {
		c.Logger().Errorf("Failed to create session: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}

	if sh.EmailClient != nil {
		sh.EmailClient.SendSwapRequestEmail(recipient, user.Name, session.SkillsExchange)
	}
	_ = notifications.SendTelegramNotification(sh.Config, fmt.Sprintf("New swap request: %s", session.ID))

	return c.JSON(http.StatusCreated, map[string]any{"session": session})
}

// GetSessions lists the caller's sessions, optionally filtered by status.
func (sh *SessionHandler) GetSessions(c echo.Context) error {
	user, ok := sh.getAuthenticatedUserFromJWT(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	status := models.SessionStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid session status")
	}

	sessions, err := models.GetSessionsForUser(sh.DB, user.ID, status)
	if err != nil {
		c.Logger().Errorf("Failed to list sessions: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list sessions")
	}

	return c.JSON(http.StatusOK, map[string]any{"sessions": sessions})
}

// GetSession returns one session, participants only.
func (sh *SessionHandler) GetSession(c echo.Context) error {
	user, ok := sh.getAuthenticatedUserFromJWT(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	session, err := models.GetSessionByID(sh.DB, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Session not found")
	}

	if err := swap.AuthorizeView(session, user.ID); err != nil {
		return domainHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"session": session})
}

// UpdateSessionStatus applies accept, decline or cancel. Accepting a video
// call without a client-supplied link mints a meeting link, best effort.
func (sh *SessionHandler) UpdateSessionStatus(c echo.Context) error {
	user, ok := sh.getAuthenticatedUserFromJWT(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	req := new(UpdateSessionStatusRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := models.GetSessionByID(sh.DB, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Session not found")
	}

	meetingLink := req.MeetingLink
	if req.Status == models.SessionAccepted && session.Format == models.FormatVideoCall && meetingLink == "" {
		link, err := generateMeetingLink(&sh.ServerState, session, user)
		if err != nil {
			c.Logger().Warnf("Failed to generate meeting link: %v", err)
		} else {
			meetingLink = link
		}
	}

	if err := swap.ChangeStatus(session, user.ID, req.Status, meetingLink); err != nil {
		return domainHTTPError(err)
	}

	if err := sh.DB.Save(session).Error; err != nil {
		c.Logger().Errorf("Failed to update session: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update session")
	}

	if session.Status == models.SessionAccepted && sh.EmailClient != nil && session.Requester != nil {
		sh.EmailClient.SendSessionAcceptedEmail(session.Requester, user.Name, session.MeetingLink)
	}

	return c.JSON(http.StatusOK, map[string]any{"session": session})
}

// SubmitFeedback records one participant's post-session feedback and folds
// the rating into the counterpart's stats. The session and both user rows
// change together, so the whole thing runs in one transaction behind a
// per-session lock.
func (sh *SessionHandler) SubmitFeedback(c echo.Context) error {
	user, ok := sh.getAuthenticatedUserFromJWT(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	req := new(SubmitFeedbackRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sessionID := c.Param("id")
	lock := lockSession(sessionID)
	defer lock.Unlock()

	var session *models.Session
	txErr := sh.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = models.GetSessionByID(tx, sessionID)
		if err != nil {
			return &swap.NotFoundError{Message: "Session not found"}
		}

		side, ok := swap.ParticipantSide(session, user.ID)
		if !ok {
			return &swap.AuthorizationError{Message: "not a participant of this session"}
		}

		counterpartID := session.RecipientID
		if side == swap.SideRecipient {
			counterpartID = session.RequesterID
		}

		// Fresh rows inside the transaction so stats do not race.
		actor, err := models.GetUserByID(tx, user.ID)
		if err != nil {
			return err
		}
		counterpart, err := models.GetUserByID(tx, counterpartID)
		if err != nil {
			return err
		}

		if _, err := swap.ApplyFeedback(session, actor, counterpart, swap.FeedbackInput{
			Rating:       req.Rating,
			Review:       req.Review,
			Endorsements: req.Endorsements,
		}, time.Now()); err != nil {
			return err
		}

		if err := tx.Save(session).Error; err != nil {
			return err
		}
		if err := tx.Save(actor).Error; err != nil {
			return err
		}
		return tx.Save(counterpart).Error
	})

	if txErr != nil {
		if isDomainError(txErr) {
			return domainHTTPError(txErr)
		}
		c.Logger().Errorf("Failed to submit feedback: %v", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to submit feedback")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Feedback submitted",
		"session": session,
	})
}
