package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"skillswap-backend/internal/common"
	"skillswap-backend/internal/models"
	"skillswap-backend/internal/swap"

	"github.com/labstack/echo/v4"
	"github.com/livekit/protocol/auth"
	"gorm.io/gorm"
)

// getAuthenticatedUserFromJWTCommon resolves the bearer token subject to a
// user row. Returns nil and false if the token is invalid or the user is gone.
func getAuthenticatedUserFromJWTCommon(c echo.Context, jwtIssuer common.JWTIssuer, db *gorm.DB) (*models.User, bool) {
	subject, err := jwtIssuer.GetSubject(c)
	if err != nil {
		return nil, false
	}

	user, err := models.GetUserByAuthID(db, subject)
	if err != nil {
		return nil, false
	}

	return user, true
}

func (h *AuthHandler) getAuthenticatedUserFromJWT(c echo.Context) (*models.User, bool) {
	return getAuthenticatedUserFromJWTCommon(c, h.JwtIssuer, h.DB)
}

func (sh *SessionHandler) getAuthenticatedUserFromJWT(c echo.Context) (*models.User, bool) {
	return getAuthenticatedUserFromJWTCommon(c, sh.JwtIssuer, sh.DB)
}

func (mh *MatchHandler) getAuthenticatedUserFromJWT(c echo.Context) (*models.User, bool) {
	return getAuthenticatedUserFromJWTCommon(c, mh.JwtIssuer, mh.DB)
}

// domainHTTPError translates swap package errors into echo HTTP errors.
// Duplicate feedback intentionally maps to 400, matching the API contract.
func domainHTTPError(err error) error {
	var validation *swap.ValidationError
	if errors.As(err, &validation) {
		return echo.NewHTTPError(http.StatusBadRequest, validation.Message)
	}
	var authz *swap.AuthorizationError
	if errors.As(err, &authz) {
		return echo.NewHTTPError(http.StatusForbidden, authz.Message)
	}
	var notFound *swap.NotFoundError
	if errors.As(err, &notFound) {
		return echo.NewHTTPError(http.StatusNotFound, notFound.Message)
	}
	var conflict *swap.ConflictError
	if errors.As(err, &conflict) {
		return echo.NewHTTPError(http.StatusBadRequest, conflict.Message)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

func isDomainError(err error) bool {
	var validation *swap.ValidationError
	var authz *swap.AuthorizationError
	var notFound *swap.NotFoundError
	var conflict *swap.ConflictError
	return errors.As(err, &validation) || errors.As(err, &authz) ||
		errors.As(err, &notFound) || errors.As(err, &conflict)
}

// Per-session locks serializing feedback submissions. Entries are tiny and
// sessions finite, so no eviction.
var sessionLocks sync.Map

func lockSession(sessionID string) *sync.Mutex {
	mu, _ := sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	return lock
}

// generateMeetingLink mints a LiveKit room token for an accepted video call
// and wraps it in a joinable URL.
func generateMeetingLink(s *common.ServerState, session *models.Session, participant *models.User) (string, error) {
	if s.Config.Livekit.APIKey == "" || s.Config.Livekit.Secret == "" {
		return "", fmt.Errorf("livekit is not configured")
	}

	roomName := "swap:" + session.ID

	token := auth.
		NewAccessToken(s.Config.Livekit.APIKey, s.Config.Livekit.Secret).
		SetIdentity(fmt.Sprintf("swap:%s:%s", session.ID, participant.ID)).
		SetValidFor(24 * time.Hour).
		SetName(participant.Name).
		SetVideoGrant(&auth.VideoGrant{
			RoomJoin: true,
			Room:     roomName,
		})

	jwt, err := token.ToJWT()
	if err != nil {
		return "", fmt.Errorf("creating meeting token: %w", err)
	}

	return fmt.Sprintf("https://meet.livekit.io/custom?liveKitUrl=%s&token=%s", s.Config.Livekit.ServerURL, jwt), nil
}
