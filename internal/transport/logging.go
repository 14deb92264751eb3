package transport

import (
	applog "github.com/Arcadesys/doctorfeelgood-sub001/internal/log"
)

// LoggingTransport satisfies Transport by logging payloads at debug level.
// Used for headless sessions with no renderer attached.
type LoggingTransport struct{}

// NewLoggingTransport creates a LoggingTransport.
func NewLoggingTransport() *LoggingTransport {
	return &LoggingTransport{}
}

// Send logs the payload. Never fails.
func (lt *LoggingTransport) Send(data any) error {
	applog.Debugf("transport: %+v", data)
	return nil
}

// Close is a no-op.
func (lt *LoggingTransport) Close() error { return nil }

var _ Transport = (*LoggingTransport)(nil)
