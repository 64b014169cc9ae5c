// Package bridge connects the page to its background worker over a
// string-message channel and keeps the login button label in sync with it.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"pwa-weather/internal/mqtt"
)

const (
	LabelLogin  = "Login"
	LabelLogout = "Logout"
)

// Channel is a bidirectional topic-based message channel.
type Channel interface {
	Handle(topic string, h mqtt.Handler)
	Connect(ctx context.Context) error
	Publish(topic string, payload []byte) error
	IsConnected() bool
}

type Bridge struct {
	ch       Channel
	topicIn  string
	topicOut string
	logger   *slog.Logger

	mu    sync.RWMutex
	label string
}

// New returns a bridge that reads worker status from topicIn and sends the
// button label on topicOut.
func New(ch Channel, topicIn, topicOut string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		ch:       ch,
		topicIn:  topicIn,
		topicOut: topicOut,
		logger:   logger,
		label:    LabelLogin,
	}
}

// Register subscribes to worker status messages and connects the channel.
// Failures are logged only.
func (b *Bridge) Register(ctx context.Context) {
	b.ch.Handle(b.topicIn, func(_ string, payload []byte) {
		b.OnMessage(string(payload))
	})
	if err := b.ch.Connect(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		b.logger.Warn("worker registration failed", "error", err)
		return
	}
	b.logger.Info("worker registered", "status_topic", b.topicIn, "login_topic", b.topicOut)
}

// OnMessage applies a worker status. "Login" shows Logout, "Logout" shows
// Login; anything else is ignored.
func (b *Bridge) OnMessage(status string) {
	var next string
	switch status {
	case LabelLogin:
		next = LabelLogout
	case LabelLogout:
		next = LabelLogin
	default:
		b.logger.Debug("ignoring worker message", "payload", status)
		return
	}

	b.mu.Lock()
	b.label = next
	b.mu.Unlock()
}

// Label is the current login button label.
func (b *Bridge) Label() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.label
}

// SendLoginToggle posts the current label to the worker. Without a worker
// connection nothing is sent. It reports whether the message went out.
func (b *Bridge) SendLoginToggle() bool {
	if !b.ch.IsConnected() {
		b.logger.Info("no active worker, login toggle not sent")
		return false
	}
	label := b.Label()
	if err := b.ch.Publish(b.topicOut, []byte(label)); err != nil {
		b.logger.Warn("login toggle not sent", "label", label, "error", err)
		return false
	}
	return true
}
