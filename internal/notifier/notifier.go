package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// HTTPNotifier доставляет токены сброса во внешний сервис рассылки.
// Само письмо собирает и отправляет внешний сервис — сюда уходит только
// email получателя и токен
type HTTPNotifier struct {
	url    string
	client *http.Client
}

func NewHTTPNotifier(url string) *HTTPNotifier {
	return &HTTPNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *HTTPNotifier) SendResetToken(ctx context.Context, email, token string) error {
	if n.url == "" {
		log.Printf("notifier url не задан, письмо для %s не отправлено", email)
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"email":       email,
		"reset_token": token,
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации уведомления: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к notifier: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки уведомления: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notifier ответил статусом %d", resp.StatusCode)
	}

	return nil
}
