package service

import "context"

// Notifier receives human-readable registry notifications.
type Notifier interface {
	Info(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

type nopNotifier struct{}

func (nopNotifier) Info(context.Context, string)  {}
func (nopNotifier) Error(context.Context, string) {}
