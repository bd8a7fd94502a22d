package conversation

import (
	"fmt"
	"strings"

	"github.com/fleetassist/fleetassist/internal/directory"
)

// Owner-facing texts. Every reply to the owner comes from here so the
// conversation reads consistently across states.

const (
	noActiveRequestText = "No active service request found. Please contact support."
	invalidOptionText   = "Invalid option. Please reply with the number corresponding to your choice (e.g., 1)."
	timePromptText      = "Please reply with your preferred date and time (e.g., Tomorrow at 10am)."
)

// CenterMenuMessage builds the first prompt for a manual-mode alert: the
// anomaly announcement followed by a 1-based numbered list of centers.
func CenterMenuMessage(issue, vehicleID string, centers []directory.ServiceCenter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ALERT: %s detected for %s.\n\nReply with a number to book:\n", issue, vehicleID)
	for i, center := range centers {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, center.Name, center.Location)
	}
	return b.String()
}

// AutoSelectedMessage builds the first prompt for an auto-mode alert, where a
// center was already chosen on the owner's behalf.
func AutoSelectedMessage(issue, vehicleID string, center directory.ServiceCenter) string {
	return fmt.Sprintf(
		"ALERT: %s detected for %s.\n\nWe have selected %s (%s) for you. %s",
		issue, vehicleID, center.Name, center.Location, timePromptText,
	)
}

// NoActiveRequestMessage is the designed response to a stray or late reply.
func NoActiveRequestMessage() string {
	return noActiveRequestText
}

// InvalidOptionMessage asks the owner to retry with a listed number.
func InvalidOptionMessage() string {
	return invalidOptionText
}

// CenterConfirmedMessage acknowledges the chosen center and asks for a time.
func CenterConfirmedMessage(centerName string) string {
	return fmt.Sprintf("Confirmed: %s. %s", centerName, timePromptText)
}

// BookingConfirmedMessage closes the conversation after a successful dispatch,
// echoing the owner's literal time text.
func BookingConfirmedMessage(centerName, timeText, confirmationCode string) string {
	return fmt.Sprintf(
		"Your service appointment at %s for %q is booked. Confirmation code: %s.",
		centerName, timeText, confirmationCode,
	)
}

// BookingPendingMessage closes the conversation when the dispatch failed; the
// owner still gets a terminal, human-readable answer.
func BookingPendingMessage(centerName, timeText string) string {
	return fmt.Sprintf(
		"We are processing your service request at %s for %q. You will receive a confirmation shortly.",
		centerName, timeText,
	)
}
