package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"skillswap-backend/internal/common"
	"skillswap-backend/internal/models"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type InitUserRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email" validate:"omitempty,email"`
	AvatarURL string `json:"avatar_url"`
}

type UpdateProfileRequest struct {
	Name      string           `json:"name"`
	Bio       string           `json:"bio"`
	AvatarURL string           `json:"avatar_url"`
	Phone     string           `json:"phone"`
	Location  *models.Location `json:"location"`
}

type UpdateSkillsRequest struct {
	SkillsTeaching []models.SkillTeaching `json:"skills_teaching" validate:"dive"`
	SkillsLearning []models.SkillLearning `json:"skills_learning" validate:"dive"`
}

type VerificationDocumentsRequest struct {
	Documents []models.VerificationDocument `json:"documents" validate:"required,min=1,dive"`
}

// LeaderboardEntry pairs a user with their live presence flag.
type LeaderboardEntry struct {
	User     *models.User `json:"user"`
	IsActive bool         `json:"is_active"`
}

// InitUser ensures a user row exists for the authenticated identity. Social
// sign-ins hit this right after the OAuth callback, so it is get-or-create.
func (h *AuthHandler) InitUser(c echo.Context) error {
	subject, err := h.JwtIssuer.GetSubject(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	user, err := models.GetUserByAuthID(h.DB, subject)
	if err == nil {
		return c.JSON(http.StatusOK, map[string]any{"user": user})
	}

	req := new(InitUserRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user = &models.User{
		AuthID:    subject,
		Name:      req.Name,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
	}
	result := h.DB.Create(user)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return echo.NewHTTPError(http.StatusConflict, "user with this email already exists")
	}
	if result.Error != nil {
		c.Logger().Errorf("Failed to init user: %v", result.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	return c.JSON(http.StatusCreated, map[string]any{"user": user})
}

func (h *AuthHandler) GetCurrentUser(c echo.Context) error {
	user, ok := h.getAuthenticatedUserFromJWT(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

// UpdateProfile updates the display fields of the current user and marks
// onboarding as completed.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	user, ok := h.getAuthenticatedUserFromJWT(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	req := new(UpdateProfileRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	user.Bio = req.Bio
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	user.OnboardingCompleted = true

	if err := h.DB.Save(user).Error; err != nil {
		c.Logger().Errorf("Failed to update profile: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}

	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

// UpdateSkills replaces both skill lists wholesale. Partial updates are the
// client's job, the API always receives the full lists.
func (h *AuthHandler) UpdateSkills(c echo.Context) error {
	user, ok := h.getAuthenticatedUserFromJWT(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	req := new(UpdateSkillsRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user.SkillsTeaching = req.SkillsTeaching
	user.SkillsLearning = req.SkillsLearning

	if err := h.DB.Save(user).Error; err != nil {
		c.Logger().Errorf("Failed to update skills: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update skills")
	}

	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

// UploadVerificationDocs records submitted identity documents and moves the
// user's verification into the pending state. Review happens out of band.
func (h *AuthHandler) UploadVerificationDocs(c echo.Context) error {
	user, ok := h.getAuthenticatedUserFromJWT(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	req := new(VerificationDocumentsRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	now := time.Now()
	for _, doc := range req.Documents {
		doc.Status = models.VerificationPending
		doc.SubmittedAt = now
		user.Verification.Documents = append(user.Verification.Documents, doc)
	}
	if user.Verification.Status != models.VerificationVerified {
		user.Verification.Status = models.VerificationPending
	}

	if err := h.DB.Save(user).Error; err != nil {
		c.Logger().Errorf("Failed to save verification documents: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save verification documents")
	}

	return c.JSON(http.StatusOK, map[string]any{"verification": user.Verification})
}

// Leaderboard returns the most active swappers, annotated with presence
// pulled from Redis pub/sub channel registrations.
func (h *AuthHandler) Leaderboard(c echo.Context) error {
	if _, ok := h.getAuthenticatedUserFromJWT(c); !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
		}
		limit = parsed
	}

	users, err := models.GetLeaderboard(h.DB, limit)
	if err != nil {
		c.Logger().Errorf("Failed to load leaderboard: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load leaderboard")
	}

	activeChannels := map[string]bool{}
	if h.Redis != nil {
		channels, err := h.Redis.PubSubChannels(c.Request().Context(), "user:*").Result()
		if err != nil {
			c.Logger().Warnf("Failed to query presence channels: %v", err)
		}
		for _, ch := range channels {
			activeChannels[ch] = true
		}
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i := range users {
		entries = append(entries, LeaderboardEntry{
			User:     &users[i],
			IsActive: activeChannels[common.GetUserChannel(users[i].ID)],
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"leaderboard": entries})
}

// GetUserProfile returns the public profile of another user.
func (h *AuthHandler) GetUserProfile(c echo.Context) error {
	if _, ok := h.getAuthenticatedUserFromJWT(c); !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	target, err := models.GetUserByID(h.DB, c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	return c.JSON(http.StatusOK, map[string]any{"user": target})
}
