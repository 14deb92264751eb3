package transport

// Transport defines a generic interface for pushing frames and beat events
// to external renderers. Implementations must be safe to call from the
// scheduler tick goroutine and must never block it.
type Transport interface {
	Send(data any) error
	Close() error
}
