package requestresponse

// WebhookResponse : подтверждение приёма платёжного события
type WebhookResponse struct {
	Received bool `json:"received" example:"true"`
}
