package tempmail

import (
	"time"

	"github.com/tempmail-go/client-go/internal/api"
)

// Message is a received message as listed by the service.
// Message is a pure data struct; fields absent from the listing are empty.
type Message struct {
	From        string
	Subject     string
	BodyPreview string
	// ReceivedAt is the service's createdAt timestamp. When it is missing
	// or unparsable, it holds the time the listing was mapped.
	ReceivedAt time.Time
}

// timestampLayouts are the ISO 8601 variants accepted for createdAt.
// Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// newMessage maps a raw record. It never fails.
func newMessage(record api.MessageRecord) *Message {
	return &Message{
		From:        record.String("from"),
		Subject:     record.String("subject"),
		BodyPreview: record.String("bodyPreview"),
		ReceivedAt:  parseTimestamp(record.String("createdAt"), time.Now),
	}
}

func parseTimestamp(value string, now func() time.Time) time.Time {
	if value != "" {
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t
			}
		}
	}
	return now()
}
