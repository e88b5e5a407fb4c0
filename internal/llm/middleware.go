package llm

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingClient logs every completion with its latency.
type LoggingClient struct {
	next   Client
	logger *logrus.Logger
}

// WithLogging wraps client so each call is logged at debug level, and
// failures at warn level.
func WithLogging(client Client, logger *logrus.Logger) *LoggingClient {
	return &LoggingClient{next: client, logger: logger}
}

func (l *LoggingClient) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := l.next.Complete(ctx, req)

	entry := l.logger.WithFields(logrus.Fields{
		"messages":    len(req.Messages),
		"temperature": req.Temperature,
		"latency_ms":  time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("LLM completion failed")
		return "", err
	}
	entry.WithField("chars", len(out)).Debug("LLM completion")
	return out, nil
}
