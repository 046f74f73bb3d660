package services

import "context"

// Notifier delivers best-effort chat notices. Implementations swallow
// delivery failures (log and move on): notifications are side effects, never
// the source of truth.
type Notifier interface {
	// NotifyClan posts to the clan chat.
	NotifyClan(ctx context.Context, text string)
	// NotifyAdmins posts to the admin chat.
	NotifyAdmins(ctx context.Context, text string)
}

// NopNotifier discards everything. Used while no chat is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyClan(context.Context, string)   {}
func (NopNotifier) NotifyAdmins(context.Context, string) {}
