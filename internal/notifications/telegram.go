// Package notifications pushes operational events (signups, new swap
// requests) to a Telegram channel the maintainers watch. A missing bot
// token turns every send into a no-op.
package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"skillswap-backend/internal/config"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// SendTelegramNotification posts a message to the configured ops channel.
func SendTelegramNotification(cfg *config.Config, message string) error {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id": cfg.Telegram.ChatID,
		"text":    message,
	})
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", cfg.Telegram.BotToken)
	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("send telegram notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}
