package api

// CreateMailboxResponse represents the POST /mailbox response.
type CreateMailboxResponse struct {
	Token   string `json:"token"`
	Mailbox string `json:"mailbox"`
}

// MessagesResponse represents the GET /messages response.
type MessagesResponse struct {
	Messages []MessageRecord `json:"messages"`
}

// MessageRecord is a single message as reported by the service. It is kept
// loosely typed so that a missing or oddly typed field never fails the
// whole listing.
type MessageRecord map[string]any

// String returns the field as a string, or "" when it is missing or not a string.
func (r MessageRecord) String(key string) string {
	s, _ := r[key].(string)
	return s
}
