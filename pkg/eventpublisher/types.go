// Package eventpublisher posts signed CloudEvents batches of user activity to a webhook collector.
package eventpublisher

import (
	"net/http"
	"time"
)

// Client posts activity batches to Endpoint + "/webhooks/activity".
type Client struct {
	Endpoint   string
	Token      string
	Secret     string
	Source     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Event is one activity record as sent over the wire.
type Event struct {
	ID         string
	Kind       string
	ActorID    string
	Payload    map[string]any
	OccurredAt time.Time
}
