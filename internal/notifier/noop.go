package notifier

import "context"

// NoopNotifier is used when Telegram is not configured.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (n *NoopNotifier) Send(_ context.Context, _ string) error { return nil }
func (n *NoopNotifier) SendWithRetry(_ context.Context, _ string, _ int) error {
	return nil
}
