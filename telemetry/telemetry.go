// Package telemetry adapts the VM's trace sink to structured logging.
package telemetry

import (
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"github.com/copyleftcultivars/hanoivm/vm"
)

// Sink emits VM trace events to a zerolog logger. It is purely
// observational: logging problems never reach the machine.
type Sink struct {
	log zerolog.Logger
}

// NewSink creates a Sink writing to the given logger.
func NewSink(log zerolog.Logger) *Sink {
	return &Sink{log: log}
}

// With returns a Sink whose events carry the session identifier.
func (s *Sink) With(session uuid.UUID) *Sink {
	return &Sink{log: s.log.With().Str("session", session.String()).Logger()}
}

// Emit implements vm.Tracer.
func (s *Sink) Emit(event string, payload int64) {
	s.log.Debug().
		Str("event", event).
		Int64("payload", payload).
		Msg("trace")
}

var _ vm.Tracer = (*Sink)(nil)
