package ports

import "miche-video-server/internal/model"

// WebhookVerifier : проверка подписи и разбор входящего платёжного события.
// Verify обязан отработать до любых побочных эффектов обработки события
type WebhookVerifier interface {
	Verify(signatureHeader string, payload []byte) (*model.PaymentEvent, error)
}
