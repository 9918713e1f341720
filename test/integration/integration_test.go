//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap-backend/internal/config"
	"skillswap-backend/internal/handlers"
	"skillswap-backend/internal/models"
	"skillswap-backend/internal/server"

	"gorm.io/gorm"
)

// setupTestServerFast creates a test server with SQLite in-memory and optional Redis
// This is much faster than using containers (no Docker needed, no container startup time)
// It uses the actual server.Initialize() method to avoid code duplication
func setupTestServerFast(t *testing.T) (*server.Server, func()) {
	// Create test config with SQLite DSN (server will auto-detect SQLite driver)
	cfg := &config.Config{}
	cfg.Server.Port = "8080"
	cfg.Server.Host = "localhost"
	cfg.Server.DeployDomain = "localhost:8080"
	cfg.Server.Debug = false
	cfg.Database.DSN = "file::memory:?cache=shared" // SQLite in-memory - server will detect and use SQLite driver
	cfg.Database.RedisURI = ""                      // Empty Redis URI - server will skip Redis setup
	cfg.Auth.SessionSecret = "test-secret-key-for-testing-only"
	cfg.Resend.DefaultSender = "test@example.com"
	// No Gemini key: match endpoints exercise the deterministic fallback

	// Create server using the actual server.New() method
	srv := server.New(cfg)
	srv.Echo.Logger.SetLevel(log.ERROR)

	// Initialize server - this will use SQLite (detected from DSN) and skip Redis (empty URI)
	err := srv.Initialize()
	require.NoError(t, err)

	// Cleanup function (SQLite in-memory is automatically cleaned up)
	cleanup := func() {
		// SQLite in-memory database is automatically cleaned up when connection closes
		// But we can explicitly close if needed
		if srv.DB != nil {
			sqlDB, _ := srv.DB.DB()
			if sqlDB != nil {
				sqlDB.Close()
			}
		}
	}

	return srv, cleanup
}

// createTestUser is a helper to create an onboarded user in the test database
func createTestUser(t *testing.T, db *gorm.DB, email, name, teaches, learns string) *models.User {
	user := &models.User{
		Name:                name,
		Email:               email,
		Password:            "password123",
		OnboardingCompleted: true,
		SkillsTeaching: []models.SkillTeaching{
			{Name: teaches, Proficiency: "advanced", WillingToTeach: true},
		},
		SkillsLearning: []models.SkillLearning{
			{Name: learns, CurrentLevel: "beginner"},
		},
	}

	err := db.Create(user).Error
	require.NoError(t, err)

	return user
}

// getJWTToken is a helper to get a JWT token for a user
func getJWTToken(t *testing.T, srv *server.Server, user *models.User) string {
	token, err := srv.JwtIssuer.GenerateToken(user.AuthID, user.Email)
	require.NoError(t, err)
	return token
}

func doJSON(srv *server.Server, method, path, token string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, req)
	return rec
}

func TestManualSignUp_NewUser(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	signUpReq := map[string]interface{}{
		"name":     "John Doe",
		"email":    "john.doe@gmail.com",
		"password": "securepassword123",
	}

	rec := doJSON(srv, http.MethodPost, "/api/sign-up", "", signUpReq)

	if rec.Code != http.StatusCreated {
		t.Logf("Response body: %s", rec.Body.String())
	}
	assert.Equal(t, http.StatusCreated, rec.Code)

	var response map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.NotEmpty(t, response["token"])

	// Verify user was created in database
	var user models.User
	err = srv.DB.Where("email = ?", "john.doe@gmail.com").First(&user).Error
	require.NoError(t, err)
	assert.Equal(t, "John Doe", user.Name)
	assert.Equal(t, "local|"+user.ID, user.AuthID)
	assert.Equal(t, models.VerificationUnverified, user.Verification.Status)
	assert.False(t, user.OnboardingCompleted)
}

func TestManualSignUp_DisposableEmailRejected(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	signUpReq := map[string]interface{}{
		"name":     "Burner",
		"email":    "burner@mailinator.com",
		"password": "securepassword123",
	}

	rec := doJSON(srv, http.MethodPost, "/api/sign-up", "", signUpReq)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestManualSignIn_Success(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	createTestUser(t, srv.DB, "signin@gmail.com", "Test User", "Go", "Piano")

	signInReq := map[string]interface{}{
		"email":    "signin@gmail.com",
		"password": "password123",
	}

	rec := doJSON(srv, http.MethodPost, "/api/sign-in", "", signInReq)
	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.NotEmpty(t, response["token"])
}

func TestManualSignIn_WrongPassword(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	createTestUser(t, srv.DB, "wrongpass@gmail.com", "Test User", "Go", "Piano")

	signInReq := map[string]interface{}{
		"email":    "wrongpass@gmail.com",
		"password": "not-the-password",
	}

	rec := doJSON(srv, http.MethodPost, "/api/sign-in", "", signInReq)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestSwapLifecycle walks the whole happy path: request, accept, both sides
// submit feedback, stats move.
func TestSwapLifecycle(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	alice := createTestUser(t, srv.DB, "alice@gmail.com", "Alice", "Go", "Spanish")
	bob := createTestUser(t, srv.DB, "bob@gmail.com", "Bob", "Spanish", "Go")

	aliceToken := getJWTToken(t, srv, alice)
	bobToken := getJWTToken(t, srv, bob)

	// Alice requests a swap with Bob
	createReq := map[string]interface{}{
		"recipient_id": bob.ID,
		"skills_exchange": map[string]string{
			"teaching": "Go",
			"learning": "Spanish",
		},
		"message":          "Trade you Go for Spanish?",
		"duration_minutes": 90,
		"format":           "chat_based",
	}

	rec := doJSON(srv, http.MethodPost, "/api/sessions", aliceToken, createReq)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Session models.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	sessionID := created.Session.ID
	assert.Equal(t, models.SessionPending, created.Session.Status)
	assert.Equal(t, 90, created.Session.DurationMinutes)

	// Alice cannot accept her own request
	rec = doJSON(srv, http.MethodPut, "/api/sessions/"+sessionID+"/status", aliceToken,
		map[string]string{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Bob accepts
	rec = doJSON(srv, http.MethodPut, "/api/sessions/"+sessionID+"/status", bobToken,
		map[string]string{"status": "accepted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated struct {
		Session models.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, models.SessionAccepted, updated.Session.Status)

	// Alice rates Bob 5, endorsing his Spanish
	rec = doJSON(srv, http.MethodPost, "/api/sessions/"+sessionID+"/feedback", aliceToken,
		map[string]interface{}{
			"rating":       5,
			"review":       "Great teacher",
			"endorsements": []string{"Spanish", "Spanish"},
		})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Session is completed after the first feedback
	var session models.Session
	require.NoError(t, srv.DB.Where("id = ?", sessionID).First(&session).Error)
	assert.Equal(t, models.SessionCompleted, session.Status)

	// Both counters moved once, Bob's rating reflects Alice's 5
	var bobRow, aliceRow models.User
	require.NoError(t, srv.DB.Where("id = ?", bob.ID).First(&bobRow).Error)
	require.NoError(t, srv.DB.Where("id = ?", alice.ID).First(&aliceRow).Error)
	assert.Equal(t, 1, bobRow.Stats.TotalSwaps)
	assert.Equal(t, 1, aliceRow.Stats.TotalSwaps)
	assert.InDelta(t, 1.5, bobRow.Stats.TotalHours, 1e-9)
	assert.InDelta(t, 1.5, aliceRow.Stats.TotalHours, 1e-9)
	assert.InDelta(t, 5.0, bobRow.Stats.AvgRating, 1e-9)
	assert.Equal(t, 1, bobRow.Stats.Endorsements["Spanish"])

	// Alice submitting again is rejected
	rec = doJSON(srv, http.MethodPost, "/api/sessions/"+sessionID+"/feedback", aliceToken,
		map[string]interface{}{"rating": 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Bob's feedback moves Alice's rating but not the counters
	rec = doJSON(srv, http.MethodPost, "/api/sessions/"+sessionID+"/feedback", bobToken,
		map[string]interface{}{"rating": 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NoError(t, srv.DB.Where("id = ?", alice.ID).First(&aliceRow).Error)
	require.NoError(t, srv.DB.Where("id = ?", bob.ID).First(&bobRow).Error)
	// Alice's average over her single pre-increment swap: (0*1+4)/2 = 2.0
	assert.InDelta(t, 2.0, aliceRow.Stats.AvgRating, 1e-9)
	assert.Equal(t, 1, aliceRow.Stats.TotalSwaps)
	assert.Equal(t, 1, bobRow.Stats.TotalSwaps)

	// Stats also visible through the API
	rec = doJSON(srv, http.MethodGet, "/api/users/me", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, 1, me.User.Stats.TotalSwaps)
}

func TestSessionAccess_NonParticipant(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	alice := createTestUser(t, srv.DB, "alice2@gmail.com", "Alice", "Go", "Spanish")
	bob := createTestUser(t, srv.DB, "bob2@gmail.com", "Bob", "Spanish", "Go")
	carol := createTestUser(t, srv.DB, "carol2@gmail.com", "Carol", "Piano", "Go")

	aliceToken := getJWTToken(t, srv, alice)
	carolToken := getJWTToken(t, srv, carol)

	rec := doJSON(srv, http.MethodPost, "/api/sessions", aliceToken, map[string]interface{}{
		"recipient_id":    bob.ID,
		"skills_exchange": map[string]string{"teaching": "Go", "learning": "Spanish"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Session models.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(srv, http.MethodGet, "/api/sessions/"+created.Session.ID, carolToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCancelSession_EitherParticipant(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	alice := createTestUser(t, srv.DB, "alice3@gmail.com", "Alice", "Go", "Spanish")
	bob := createTestUser(t, srv.DB, "bob3@gmail.com", "Bob", "Spanish", "Go")

	aliceToken := getJWTToken(t, srv, alice)

	rec := doJSON(srv, http.MethodPost, "/api/sessions", aliceToken, map[string]interface{}{
		"recipient_id":    bob.ID,
		"skills_exchange": map[string]string{"teaching": "Go", "learning": "Spanish"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Session models.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(srv, http.MethodPut, "/api/sessions/"+created.Session.ID+"/status", aliceToken,
		map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Cancelled is terminal
	rec = doJSON(srv, http.MethodPut, "/api/sessions/"+created.Session.ID+"/status", aliceToken,
		map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFindMatches_FallbackWithoutModel(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	alice := createTestUser(t, srv.DB, "alice4@gmail.com", "Alice", "Go", "Spanish")
	createTestUser(t, srv.DB, "bob4@gmail.com", "Bob", "Spanish", "Go")
	createTestUser(t, srv.DB, "carol4@gmail.com", "Carol", "Piano", "Drawing")

	aliceToken := getJWTToken(t, srv, alice)

	rec := doJSON(srv, http.MethodPost, "/api/match/find", aliceToken, map[string]interface{}{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response struct {
		Source  string `json:"source"`
		Matches []struct {
			UserID             string  `json:"user_id"`
			CompatibilityScore float64 `json:"compatibility_score"`
			MutualBenefit      bool    `json:"mutual_benefit"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "fallback", response.Source)
	require.Len(t, response.Matches, 2)
	assert.InDelta(t, 7.5, response.Matches[0].CompatibilityScore, 1e-9)
	assert.InDelta(t, 7.0, response.Matches[1].CompatibilityScore, 1e-9)
}

func TestExplainMatch_FallbackWithoutModel(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	alice := createTestUser(t, srv.DB, "alice5@gmail.com", "Alice", "Go", "Spanish")
	bob := createTestUser(t, srv.DB, "bob5@gmail.com", "Bob", "Spanish", "Go")

	aliceToken := getJWTToken(t, srv, alice)

	rec := doJSON(srv, http.MethodGet, "/api/match/explain/"+bob.ID, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var explanation struct {
		Source             string  `json:"source"`
		CompatibilityScore float64 `json:"compatibility_score"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &explanation))
	assert.Equal(t, "fallback", explanation.Source)
	// Mutual exchange: each teaches what the other wants to learn
	assert.InDelta(t, 8.0, explanation.CompatibilityScore, 1e-9)
}

func TestLeaderboard_OrderedBySwaps(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	alice := createTestUser(t, srv.DB, "alice6@gmail.com", "Alice", "Go", "Spanish")
	bob := createTestUser(t, srv.DB, "bob6@gmail.com", "Bob", "Spanish", "Go")

	bob.Stats.TotalSwaps = 5
	bob.Stats.AvgRating = 4.5
	require.NoError(t, srv.DB.Save(bob).Error)

	aliceToken := getJWTToken(t, srv, alice)

	rec := doJSON(srv, http.MethodGet, "/api/users/leaderboard?limit=10", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response struct {
		Leaderboard []struct {
			User     models.User `json:"user"`
			IsActive bool        `json:"is_active"`
		} `json:"leaderboard"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Leaderboard, 2)
	assert.Equal(t, bob.ID, response.Leaderboard[0].User.ID)
}

func TestUpdateSkillsAndProfile(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	// Sign up through the API so onboarding starts incomplete
	rec := doJSON(srv, http.MethodPost, "/api/sign-up", "", map[string]interface{}{
		"name":     "Newbie",
		"email":    "newbie@gmail.com",
		"password": "securepassword123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var signUp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signUp))
	token := signUp["token"]

	rec = doJSON(srv, http.MethodPut, "/api/users/skills", token, map[string]interface{}{
		"skills_teaching": []map[string]interface{}{
			{"name": "Photography", "proficiency": "expert", "years_experience": 8, "willing_to_teach": true},
		},
		"skills_learning": []map[string]interface{}{
			{"name": "Cooking", "current_level": "beginner", "goal": "Host a dinner party"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(srv, http.MethodPut, "/api/users/profile", token, map[string]interface{}{
		"bio":      "Photographer, aspiring cook",
		"location": map[string]string{"city": "Lisbon", "country": "Portugal"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var user models.User
	require.NoError(t, srv.DB.Where("email = ?", "newbie@gmail.com").First(&user).Error)
	assert.True(t, user.OnboardingCompleted)
	assert.Equal(t, "Lisbon", user.Location.City)
	require.Len(t, user.SkillsTeaching, 1)
	assert.Equal(t, "Photography", user.SkillsTeaching[0].Name)

	// Invalid proficiency is rejected
	rec = doJSON(srv, http.MethodPut, "/api/users/skills", token, map[string]interface{}{
		"skills_teaching": []map[string]interface{}{
			{"name": "Photography", "proficiency": "grandmaster"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerificationDocuments(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	alice := createTestUser(t, srv.DB, "alice7@gmail.com", "Alice", "Go", "Spanish")
	aliceToken := getJWTToken(t, srv, alice)

	rec := doJSON(srv, http.MethodPost, "/api/users/verification/documents", aliceToken,
		map[string]interface{}{
			"documents": []map[string]string{
				{"url": "https://cdn.example.com/id-card.png", "type": "id_card"},
			},
		})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var user models.User
	require.NoError(t, srv.DB.Where("id = ?", alice.ID).First(&user).Error)
	assert.Equal(t, models.VerificationPending, user.Verification.Status)
	require.Len(t, user.Verification.Documents, 1)
	assert.Equal(t, models.VerificationPending, user.Verification.Documents[0].Status)
}

type MockSocialAuthProvider struct {
	User  goth.User
	Error error
}

func (m *MockSocialAuthProvider) CompleteUserAuth(res http.ResponseWriter, req *http.Request) (goth.User, error) {
	return m.User, m.Error
}

func TestSocialLoginCallback_NewUser(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	mockProvider := &MockSocialAuthProvider{
		User: goth.User{
			UserID:    "1234567890",
			Email:     "socialuser@gmail.com",
			Name:      "Social User",
			AvatarURL: "https://example.com/avatar.jpg",
		},
		Error: nil,
	}

	authHandler := handlers.NewAuthHandler(srv.ServerState, mockProvider)
	srv.Echo.Router().Add(http.MethodGet, "/api/auth/social/:provider/callback", authHandler.SocialLoginCallback)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/social/google/callback", nil)
	rec := httptest.NewRecorder()

	srv.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login?token=")

	var user models.User
	err := srv.DB.Where("email = ?", "socialuser@gmail.com").First(&user).Error
	require.NoError(t, err)
	assert.Equal(t, "google|1234567890", user.AuthID)
	assert.Equal(t, "Social User", user.Name)
}

func TestSocialLoginCallback_LinksExistingManualAccount(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	existing := createTestUser(t, srv.DB, "linked@gmail.com", "Linked User", "Go", "Spanish")

	mockProvider := &MockSocialAuthProvider{
		User: goth.User{
			UserID: "999",
			Email:  "linked@gmail.com",
			Name:   "Linked User",
		},
		Error: nil,
	}

	authHandler := handlers.NewAuthHandler(srv.ServerState, mockProvider)
	srv.Echo.Router().Add(http.MethodGet, "/api/auth/social/:provider/callback", authHandler.SocialLoginCallback)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/social/google/callback", nil)
	rec := httptest.NewRecorder()

	srv.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)

	// No second account; the existing row keeps its auth id
	var count int64
	require.NoError(t, srv.DB.Model(&models.User{}).Where("email = ?", "linked@gmail.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var user models.User
	require.NoError(t, srv.DB.Where("email = ?", "linked@gmail.com").First(&user).Error)
	assert.Equal(t, existing.AuthID, user.AuthID)
}

func TestInitUser_GetOrCreate(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	// A social identity that has no user row yet
	token, err := srv.JwtIssuer.GenerateToken("google|brand-new", "init@gmail.com")
	require.NoError(t, err)

	rec := doJSON(srv, http.MethodPost, "/api/users/init", token, map[string]interface{}{
		"name":  "Init User",
		"email": "init@gmail.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Second call returns the existing row
	rec = doJSON(srv, http.MethodPost, "/api/users/init", token, map[string]interface{}{
		"name":  "Init User",
		"email": "init@gmail.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var count int64
	require.NoError(t, srv.DB.Model(&models.User{}).Where("email = ?", "init@gmail.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestForgotAndResetPassword(t *testing.T) {
	srv, cleanup := setupTestServerFast(t)
	defer cleanup()

	user := createTestUser(t, srv.DB, "reset@gmail.com", "Reset User", "Go", "Spanish")

	rec := doJSON(srv, http.MethodPost, "/api/forgot-password", "", map[string]string{
		"email": "reset@gmail.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var token models.Token
	require.NoError(t, srv.DB.Where("user_id = ?", user.ID).First(&token).Error)

	rec = doJSON(srv, http.MethodPatch, fmt.Sprintf("/api/reset-password/%s", token.Token), "",
		map[string]string{"password": "brand-new-password"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Old password no longer works, new one does
	rec = doJSON(srv, http.MethodPost, "/api/sign-in", "", map[string]string{
		"email": "reset@gmail.com", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(srv, http.MethodPost, "/api/sign-in", "", map[string]string{
		"email": "reset@gmail.com", "password": "brand-new-password",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Token is single use
	rec = doJSON(srv, http.MethodPatch, fmt.Sprintf("/api/reset-password/%s", token.Token), "",
		map[string]string{"password": "another-password-1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
