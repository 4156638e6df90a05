package payment

// WebhookEvent is one provider callback. The provider may deliver a batch of
// events in a single request after an outage, so the top-level payload is a
// list.
type WebhookEvent struct {
	SessionRef string  `json:"session_ref" binding:"required"`
	Event      string  `json:"event" binding:"required"`
	Amount     float64 `json:"amount"`
	Signature  string  `json:"signature" binding:"required"`
}

type WebhookRequest struct {
	Events []WebhookEvent `json:"events" binding:"required,min=1,dive"`
}

type WebhookEventResult struct {
	SessionRef string `json:"session_ref"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
}

type WebhookResponse struct {
	Results []WebhookEventResult `json:"results"`
}
