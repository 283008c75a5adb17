package audit

import (
	"context"

	"go.uber.org/multierr"
)

// MultiSink fans a batch out to every sink. All sinks are attempted;
// their errors are combined.
type MultiSink []Sink

var _ Sink = MultiSink(nil)

func (m MultiSink) Write(ctx context.Context, batch []Record) error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.Write(ctx, batch))
	}
	return err
}
