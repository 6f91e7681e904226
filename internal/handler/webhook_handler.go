package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"miche-video-server/internal/model/requestresponse"
	"miche-video-server/internal/ports"
	"miche-video-server/internal/security"
)

// webhookMaxBodySize ограничивает тело платёжного события
const webhookMaxBodySize = 1 << 20

type WebhookHandler struct {
	verifier ports.WebhookVerifier
}

func NewWebhookHandler(verifier ports.WebhookVerifier) *WebhookHandler {
	return &WebhookHandler{verifier: verifier}
}

// PaymentWebhook godoc
// @Summary Приём платёжного webhook
// @Description Проверяет подпись и метку времени до любой обработки события. Детали подписи в ответ не попадают
// @Tags Webhook
// @Accept json
// @Produce json
// @Param Payment-Signature header string true "t=<unix>,v1=<hex>"
// @Success 200 {object} requestresponse.WebhookResponse
// @Failure 400 {object} requestresponse.ErrorResponse "invalid_signature или invalid_payload"
// @Router /api/webhook/payment [post]
func (h *WebhookHandler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, webhookMaxBodySize))
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, codeValidationError, "не удалось прочитать тело запроса")
		return
	}

	event, err := h.verifier.Verify(r.Header.Get(security.SignatureHeader), body)
	if err != nil {
		// причина отказа остаётся в логах, клиенту — только факт
		log.Printf("webhook отклонён: %v", err)
		if errors.Is(err, security.ErrMalformedPayload) {
			sendErrorResponse(w, http.StatusBadRequest, "invalid_payload", "некорректное тело события")
			return
		}
		sendErrorResponse(w, http.StatusBadRequest, "invalid_signature", "проверка подписи не пройдена")
		return
	}

	// бизнес-обработка события начинается только после успешной проверки
	log.Printf("платёжное событие %s (%s) принято", event.ID, event.Type)

	sendJSON(w, http.StatusOK, requestresponse.WebhookResponse{Received: true})
}
