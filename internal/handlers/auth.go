package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"skillswap-backend/internal/common"
	"skillswap-backend/internal/models"
	"skillswap-backend/internal/notifications"
	"skillswap-backend/internal/utils"

	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"gorm.io/gorm"
)

type AuthHandler struct {
	common.ServerState
	SocialAuth common.SocialAuthProvider
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

func NewAuthHandler(state common.ServerState, socialAuth common.SocialAuthProvider) *AuthHandler {
	return &AuthHandler{
		ServerState: state,
		SocialAuth:  socialAuth,
	}
}

type RealGothicProvider struct{}

func (r *RealGothicProvider) CompleteUserAuth(res http.ResponseWriter, req *http.Request) (goth.User, error) {
	return gothic.CompleteUserAuth(res, req)
}

func (h *AuthHandler) SocialLogin(c echo.Context) error {
	provider := c.Param("provider")

	req := c.Request()
	// Set the provider in the query parameters for gothic to work
	q := req.URL.Query()
	q.Set("provider", provider)
	req.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Response(), req)
	return nil
}

func (h *AuthHandler) SocialLoginCallback(c echo.Context) error {
	gothUser, err := h.SocialAuth.CompleteUserAuth(c.Response(), c.Request())
	if err != nil {
		return err
	}

	if gothUser.Email == "" {
		c.Logger().Error("User email is empty from provider")
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required but not provided by the authentication provider")
	}

	providerName := c.Param("provider")
	authID := fmt.Sprintf("%s|%s", providerName, gothUser.UserID)

	var u models.User
	isNewUser := false

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("auth_id = ?", authID).First(&u)
		if result.Error == nil {
			return nil
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		// Returning users who signed up manually keep their account, the
		// social identity just logs them into it.
		result = tx.Where("email = ?", gothUser.Email).First(&u)
		if result.Error == nil {
			return nil
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		isNewUser = true
		name := gothUser.Name
		if name == "" {
			name = gothUser.FirstName + " " + gothUser.LastName
		}

		u = models.User{
			AuthID:    authID,
			Name:      name,
			Email:     gothUser.Email,
			AvatarURL: gothUser.AvatarURL,
		}
		if err := tx.Create(&u).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})

	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if isNewUser && h.EmailClient != nil {
		h.EmailClient.SendWelcomeEmail(&u)
	}

	token, err := h.JwtIssuer.GenerateToken(u.AuthID, u.Email)
	if err != nil {
		return c.String(http.StatusInternalServerError, "Failed to generate token")
	}

	_ = notifications.SendTelegramNotification(h.Config, fmt.Sprintf("New sign-in: %s", u.ID))

	// Redirect to the web app with the JWT token
	return c.Redirect(http.StatusFound, fmt.Sprintf("/login?token=%s", token))
}

func (h *AuthHandler) ManualSignUp(c echo.Context) error {
	c.Logger().Info("Received manual sign-up request")

	type SignUpRequest struct {
		models.User
	}

	req := new(SignUpRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u := &req.User
	if err := c.Validate(u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if u.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Password is required")
	}

	if err := utils.ValidateEmailAddress(u.Email); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := h.DB.Create(u)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return echo.NewHTTPError(http.StatusConflict, "user with this email already exists")
	}
	if result.Error != nil {
		c.Logger().Errorf("Failed to create user: %v", result.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	if h.EmailClient != nil {
		h.EmailClient.SendWelcomeEmail(u)
	}

	token, err := h.JwtIssuer.GenerateToken(u.AuthID, u.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	_ = notifications.SendTelegramNotification(h.Config, fmt.Sprintf("New sign-up: %s", u.ID))

	return c.JSON(http.StatusCreated, map[string]string{"token": token})
}

func (h *AuthHandler) ManualSignIn(c echo.Context) error {
	c.Logger().Info("Received manual sign-in request")
	req := &SignInRequest{}

	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u := &models.User{}
	result := h.DB.Where("email = ?", req.Email).First(u)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if !u.CheckPassword(req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.JwtIssuer.GenerateToken(u.AuthID, u.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	c.Logger().Info("Received forgot password request")
	req := &ForgotPasswordRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u := &models.User{}
	result := h.DB.Where("email = ?", req.Email).First(u)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	resetToken := &models.Token{UserID: u.ID}
	if err := resetToken.CreateToken(h.DB, models.TokenTypePasswordReset); err != nil {
		c.Logger().Error("Failed to persist password reset token:", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create password reset token")
	}

	if h.EmailClient != nil {
		baseURL := "https://" + h.Config.Server.DeployDomain
		resetLink := fmt.Sprintf("%s/reset-password?token=%s", baseURL, resetToken.Token)
		h.EmailClient.SendPasswordResetEmail(u.Email, resetLink)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Password reset token sent"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	c.Logger().Info("Received reset password request")
	req := &ResetPasswordRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tokenString := c.Param("token")
	if tokenString == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing token")
	}

	resetToken, err := models.GetResetToken(h.DB, tokenString)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	if resetToken.Used() {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token already used. Request a new password reset.")
	}
	if !resetToken.IsValid() {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token expired. Request a new password reset.")
	}

	u, err := models.GetUserByID(h.DB, resetToken.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	hashedPassword, err := models.HashPassword(req.Password)
	if err != nil {
		c.Logger().Error("Failed to hash password:", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to reset password")
	}
	u.HashedPassword = hashedPassword
	u.Password = ""
	if err := h.DB.Save(u).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to reset password")
	}

	if err := resetToken.MarkUsed(h.DB); err != nil {
		c.Logger().Warn("Failed to mark password reset token as used:", err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Your password has been changed. You can now use it to log in."})
}
