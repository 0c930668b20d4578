package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NotifyWebhook : отправляет уведомление о попытке обновления токенов с нового IP
func NotifyWebhook(webhookURL string, userUUID string, newIP string, oldIP string) error {
	if webhookURL == "" {
		return nil
	}

	payload := map[string]string{
		"user_uuid": userUUID,
		"new_ip":    newIP,
		"old_ip":    oldIP,
		"event":     "refresh_from_new_ip",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации webhook: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ошибка отправки webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook вернул статус %d", resp.StatusCode)
	}

	return nil
}
