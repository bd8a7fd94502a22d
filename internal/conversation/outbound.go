package conversation

import "context"

// Messenger delivers messages to a vehicle owner (e.g. via SMS).
type Messenger interface {
	Send(ctx context.Context, msg OutboundMessage) error
}

// OutboundMessage carries the data required to push a message to the owner.
type OutboundMessage struct {
	To       string
	From     string
	Body     string
	Metadata map[string]string
}
