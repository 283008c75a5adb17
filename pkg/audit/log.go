package audit

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes records as structured log entries.
type LogSink struct {
	logger *zap.Logger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink creates a sink logging through logger. A nil logger discards records.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger.Named("audit")}
}

// Write logs each record at info level. The hash field is present only on
// checkpoint records.
func (s *LogSink) Write(_ context.Context, batch []Record) error {
	for _, rec := range batch {
		fields := []zap.Field{
			zap.Int64("id", rec.ID),
			zap.String("queue", rec.Queue),
			zap.String("op", string(rec.Op)),
			zap.Int("size", rec.Size),
			zap.Time("at", rec.At),
		}
		if rec.Hash != "" {
			fields = append(fields, zap.String("hash", rec.Hash))
		}
		s.logger.Info("queue checkpoint", fields...)
	}
	return nil
}
