// Package conversation implements the per-owner SMS conversation: the durable
// session record, the state machine that interprets replies, and the outbound
// message texts.
package conversation

import (
	"errors"
	"fmt"
	"time"
)

// State identifies where a conversation currently is.
type State string

const (
	// StateAwaitingCenterChoice means the owner was sent a numbered list of
	// service centers and has not picked one yet.
	StateAwaitingCenterChoice State = "AWAITING_CENTER_CHOICE"
	// StateAwaitingTimeChoice means a center is selected and the owner was
	// asked for a preferred date/time.
	StateAwaitingTimeChoice State = "AWAITING_TIME_CHOICE"
)

// maxCenterOptions caps the numbered menu presented to the owner.
const maxCenterOptions = 5

// Session is the durable record of one in-flight conversation, keyed by the
// owner's phone number. A session is one-shot: it is deleted after the
// terminal transition and never reused.
type Session struct {
	Phone            string            `json:"phone"`
	VehicleID        string            `json:"vehicle_id"`
	Issue            string            `json:"issue"`
	UserID           string            `json:"user_id"`
	State            State             `json:"state"`
	CenterOptions    map[string]string `json:"center_options,omitempty"`
	SelectedCenterID string            `json:"selected_center_id,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	LastUpdatedAt    time.Time         `json:"last_updated_at"`
}

// Validate rejects field combinations that contradict the session state.
// The store refuses to persist an invalid session.
func (s *Session) Validate() error {
	if s.Phone == "" {
		return errors.New("conversation: session phone required")
	}
	if s.VehicleID == "" {
		return errors.New("conversation: session vehicle id required")
	}
	switch s.State {
	case StateAwaitingCenterChoice:
		if len(s.CenterOptions) == 0 {
			return errors.New("conversation: center choice pending without options")
		}
		if len(s.CenterOptions) > maxCenterOptions {
			return fmt.Errorf("conversation: at most %d center options allowed", maxCenterOptions)
		}
	case StateAwaitingTimeChoice:
		if s.SelectedCenterID == "" {
			return errors.New("conversation: time choice pending without a selected center")
		}
	default:
		return fmt.Errorf("conversation: unknown session state %q", s.State)
	}
	return nil
}
