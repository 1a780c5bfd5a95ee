package jobs

import (
	"context"
	"fmt"
)

// LoginNotifier queues login-alert emails through the job broker. It
// satisfies the auth package's Notifier contract; enqueue failures surface
// to the caller, who treats them as best-effort.
type LoginNotifier struct {
	Client *Client
}

// LoginAlert enqueues a new-sign-in notification for the account.
func (n *LoginNotifier) LoginAlert(ctx context.Context, email, ipAddress, userAgent string) error {
	if n == nil || n.Client == nil {
		return nil
	}
	_, err := n.Client.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      email,
		Subject: "New sign-in to your Reachloop account",
		Body:    fmt.Sprintf("A new session was started from %s (%s). If this wasn't you, revoke it from your devices page.", ipAddress, userAgent),
	})
	return err
}
