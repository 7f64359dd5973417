package notify

import (
	"github.com/rs/zerolog/log"
)

// Permission mirrors the user-facing alert permission: alerts about new
// reservations fire only when it is granted, and the user is asked at
// most once while it is still at its default.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Notifier surfaces sync outcomes to whoever is watching the dashboard.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Warn(msg string)
	Error(msg string)
}

type logNotifier struct{}

// NewLogNotifier returns a Notifier that writes every notification to
// the structured log.
func NewLogNotifier() Notifier {
	return &logNotifier{}
}

func (n *logNotifier) Info(msg string) {
	log.Info().Str("notification", "info").Msg(msg)
}

func (n *logNotifier) Success(msg string) {
	log.Info().Str("notification", "success").Msg(msg)
}

func (n *logNotifier) Warn(msg string) {
	log.Warn().Str("notification", "warn").Msg(msg)
}

func (n *logNotifier) Error(msg string) {
	log.Error().Str("notification", "error").Msg(msg)
}

type gatedNotifier struct {
	next       Notifier
	permission Permission
}

// Gated wraps a Notifier so that Info alerts are dropped unless the
// permission is granted. Warnings and errors always pass through.
func Gated(next Notifier, permission Permission) Notifier {
	return &gatedNotifier{next: next, permission: permission}
}

func (n *gatedNotifier) Info(msg string) {
	if n.permission != PermissionGranted {
		return
	}

	n.next.Info(msg)
}

func (n *gatedNotifier) Success(msg string) {
	n.next.Success(msg)
}

func (n *gatedNotifier) Warn(msg string) {
	n.next.Warn(msg)
}

func (n *gatedNotifier) Error(msg string) {
	n.next.Error(msg)
}
