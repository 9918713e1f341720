package common

import (
	"net/http"

	"skillswap-backend/internal/config"
	"skillswap-backend/internal/email"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/redis/go-redis/v9"
	"github.com/wader/gormstore/v2"
	"gorm.io/gorm"
)

type JwtCustomClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTIssuer abstracts token issuing so handlers and tests can swap
// implementations. The subject is the user's auth id.
type JWTIssuer interface {
	GenerateToken(subject string, email string) (string, error)
	Middleware() echo.MiddlewareFunc
	GetSubject(c echo.Context) (string, error)
}

type SocialAuthProvider interface {
	CompleteUserAuth(res http.ResponseWriter, req *http.Request) (goth.User, error)
}

type ServerState struct {
	Echo        *echo.Echo
	Config      *config.Config
	DB          *gorm.DB
	Store       *gormstore.Store
	JwtIssuer   JWTIssuer
	Redis       *redis.Client
	EmailClient email.EmailClient
}

// GetUserChannel is the redis pub/sub channel a connected client listens on.
// Subscriber count doubles as an online-presence signal.
func GetUserChannel(userID string) string {
	return "user:" + userID
}
