package messenger

import "context"

// Messenger delivers direct notifications on one chat platform.
type Messenger interface {
	// SendNotification sends a direct message to a user by their external
	// platform ID (e.g. Slack user ID).
	SendNotification(ctx context.Context, userExternalID, title, text string) error

	// Platform returns the messenger platform identifier (e.g. "slack").
	Platform() string
}
