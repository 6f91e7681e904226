package model

import "encoding/json"

// PaymentEvent : событие платёжного провайдера, разобранное из тела webhook.
// Нигде не сохраняется — живёт только на время обработки запроса
type PaymentEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}
