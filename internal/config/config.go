package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Port string
		Host string
		TLS  struct {
			Enabled  bool
			CertFile string
			KeyFile  string
		}
		DeployDomain string
		Debug        bool
	}
	Auth struct {
		GoogleKey      string
		GoogleSecret   string
		GoogleRedirect string
		Auth0Key       string
		Auth0Secret    string
		Auth0Domain    string
		Auth0Redirect  string
		SessionSecret  string
	}
	Database struct {
		DSN      string
		RedisURI string
	}
	Gemini struct {
		APIKey string
		Model  string
	}
	Livekit struct {
		APIKey    string
		Secret    string
		ServerURL string
	}
	Telegram struct {
		BotToken string
		ChatID   string
	}
	Resend struct {
		APIKey        string
		DefaultSender string
	}
	Sentry struct {
		DSN string
	}
}

func Load() (*Config, error) {

	envStack := os.Getenv("ENV_STACK")

	if envStack != "" {
		filePath := "./env-files/.env." + envStack
		err := godotenv.Load(filePath)
		if err != nil {
			fmt.Printf("Error loading .env file: %s\n", err)
		}

		// Load internal one, from maintainer's team to avoid pushing to git
		internalFilePath := "./env-files/.env.internal"
		err = godotenv.Load(internalFilePath)
		if err != nil {
			fmt.Printf("Error loading .env.internal file: %s\n", err)
		}
	}

	c := &Config{}

	c.Server.Port = os.Getenv("SERVER_PORT")
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}

	c.Server.Host = os.Getenv("SERVER_HOST")
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}

	c.Server.DeployDomain = os.Getenv("DEPLOY_DOMAIN")
	if c.Server.DeployDomain == "" {
		c.Server.DeployDomain = c.Server.Host + ":" + c.Server.Port
	}

	c.Server.Debug = os.Getenv("ENABLE_DEBUG_ENDPOINTS") == "true"

	useTLS := os.Getenv("USE_TLS")
	c.Server.TLS.Enabled = useTLS != "false" && useTLS != "0"
	c.Server.TLS.CertFile = "./certs/localhost.pem"
	c.Server.TLS.KeyFile = "./certs/localhost-key.pem"

	c.Auth.SessionSecret = os.Getenv("SESSION_SECRET")

	c.Auth.GoogleKey = os.Getenv("GOOGLE_KEY")
	c.Auth.GoogleSecret = os.Getenv("GOOGLE_SECRET")
	c.Auth.GoogleRedirect = fmt.Sprintf("https://%s/api/auth/social/google/callback", c.Server.DeployDomain)

	c.Auth.Auth0Key = os.Getenv("AUTH0_KEY")
	c.Auth.Auth0Secret = os.Getenv("AUTH0_SECRET")
	c.Auth.Auth0Domain = os.Getenv("AUTH0_DOMAIN")
	c.Auth.Auth0Redirect = fmt.Sprintf("https://%s/api/auth/social/auth0/callback", c.Server.DeployDomain)

	c.Database.DSN = os.Getenv("DATABASE_DSN")
	c.Database.RedisURI = os.Getenv("REDIS_URI")

	c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	c.Gemini.Model = os.Getenv("GEMINI_MODEL")
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}

	c.Livekit.APIKey = os.Getenv("LIVEKIT_API_KEY")
	c.Livekit.Secret = os.Getenv("LIVEKIT_API_SECRET")
	c.Livekit.ServerURL = os.Getenv("LIVEKIT_SERVER_URL")

	c.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	c.Telegram.ChatID = os.Getenv("TELEGRAM_CHAT_ID")

	c.Resend.APIKey = os.Getenv("RESEND_API_KEY")
	c.Resend.DefaultSender = os.Getenv("RESEND_DEFAULT_SENDER")
	if c.Resend.DefaultSender == "" {
		c.Resend.DefaultSender = "noreply@skillswap.dev"
	}

	c.Sentry.DSN = os.Getenv("SENTRY_DSN")

	return c, nil
}
