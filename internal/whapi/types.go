package whapi

// Message types the bot reacts to. Anything else in a delivery is skipped.
const (
	TypeText  = "text"
	TypeAudio = "audio"
)

// Message is one inbound message inside a webhook delivery.
type Message struct {
	Type   string `json:"type"`
	Body   string `json:"body,omitempty"`
	From   string `json:"from"`
	To     string `json:"to"`
	FromMe bool   `json:"from_me"`
}

// UserID returns the conversational identity the message belongs to.
// Outbound echoes (from_me) are attributed to the destination, everything
// else to the sender.
func (m Message) UserID() string {
	if m.FromMe {
		return m.To
	}
	return m.From
}

// WebhookPayload is the body of a webhook delivery: a batch of messages
// processed strictly in array order.
type WebhookPayload struct {
	Messages []Message `json:"messages"`
}
