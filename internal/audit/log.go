package audit

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSink writes events as structured log lines.
type LogSink struct {
	logger logrus.FieldLogger
}

func NewLogSink(logger logrus.FieldLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(_ context.Context, e Event) error {
	fields := logrus.Fields{
		"action":      e.Action,
		"entity_type": e.EntityType,
		"entity_id":   e.EntityID.String(),
		"occurred_at": e.OccurredAt,
	}
	if e.ActorID.Valid {
		fields["actor_id"] = e.ActorID.UUID.String()
	}
	for k, v := range e.Details {
		fields["detail."+k] = v
	}
	s.logger.WithFields(fields).Info("activity")
	return nil
}

func (s *LogSink) Close() error { return nil }
