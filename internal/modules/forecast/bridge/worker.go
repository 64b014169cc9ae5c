package bridge

import (
	"context"
	"fmt"
	"log/slog"
)

// Worker is the broker-side counterpart of Bridge: it answers every login
// toggle with the same status string.
type Worker struct {
	ch       Channel
	topicIn  string
	topicOut string
	logger   *slog.Logger
}

// NewWorker uses the bridge's topic names: it listens on topicOut and answers
// on topicIn.
func NewWorker(ch Channel, topicIn, topicOut string, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{ch: ch, topicIn: topicIn, topicOut: topicOut, logger: logger}
}

func (w *Worker) Start(ctx context.Context) error {
	w.ch.Handle(w.topicOut, func(_ string, payload []byte) {
		w.echo(payload)
	})
	if err := w.ch.Connect(ctx); err != nil {
		return fmt.Errorf("worker connect: %w", err)
	}
	w.logger.Info("worker started", "listen", w.topicOut, "reply", w.topicIn)
	return nil
}

func (w *Worker) echo(payload []byte) {
	if err := w.ch.Publish(w.topicIn, payload); err != nil {
		w.logger.Warn("worker reply failed", "payload", string(payload), "error", err)
	}
}
