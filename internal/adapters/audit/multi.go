package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/longregen/dailybrief/internal/adapters/metrics"
	"github.com/longregen/dailybrief/internal/ports"
)

// NamedSink is an AuditSink that can identify itself in metrics and errors.
type NamedSink interface {
	ports.AuditSink
	Name() string
}

// Multi fans each record out to every sink. The location is the first
// successful sink's location; failures are joined.
type Multi struct {
	sinks []NamedSink
}

func NewMulti(sinks ...NamedSink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Record(ctx context.Context, r ports.AuditRecord) (string, error) {
	var locations []string
	var errs []error

	for _, s := range m.sinks {
		loc, err := s.Record(ctx, r)
		if err != nil {
			metrics.AuditRecordsTotal.WithLabelValues(s.Name(), metrics.StatusError).Inc()
			errs = append(errs, fmt.Errorf("%s sink: %w", s.Name(), err))
			continue
		}
		metrics.AuditRecordsTotal.WithLabelValues(s.Name(), metrics.StatusSuccess).Inc()
		locations = append(locations, loc)
	}

	return strings.Join(locations, ", "), errors.Join(errs...)
}

// Close closes every sink that holds a connection.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if c, ok := s.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Nop discards records.
type Nop struct{}

func (Nop) Name() string { return "nop" }

func (Nop) Record(context.Context, ports.AuditRecord) (string, error) { return "", nil }
