package messenger

// WebhookPayload is the event-delivery envelope posted by the platform.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

type MessagingEvent struct {
	Sender    Participant `json:"sender"`
	Recipient Participant `json:"recipient"`
	Timestamp int64       `json:"timestamp"`
	Message   *Message    `json:"message,omitempty"`
}

type Participant struct {
	ID string `json:"id"`
}

type Message struct {
	MID  string `json:"mid"`
	Text string `json:"text"`
}

// sendRequest is the Send API payload for an outbound reply.
type sendRequest struct {
	Recipient     Participant `json:"recipient"`
	Message       sendMessage `json:"message"`
	MessagingType string      `json:"messaging_type"`
}

type sendMessage struct {
	Text string `json:"text"`
}
