// Package transport defines the serial port capability the session depends
// on, and provides the Linux termios implementation of it. The session never
// opens devices itself; it goes through an Opener so tests can substitute a
// scripted port.
package transport

// EventKind discriminates port events.
type EventKind int

const (
	EventData   EventKind = iota // Data holds a raw chunk
	EventError                   // Err holds a read failure
	EventClosed                  // the port is gone; no further events follow
)

// Event is one occurrence on an open port. For a single port, events are
// delivered in arrival order and EventClosed is always last; the event
// channel is closed after it.
type Event struct {
	Kind EventKind
	Data []byte
	Err  error
}

// Port is one open serial connection. Close is safe to call multiple times
// and unblocks the internal reader.
type Port interface {
	Write(p []byte) (int, error)
	Close() error
	Events() <-chan Event
}

// Opener creates ports. The session holds one Opener for its whole lifetime
// and asks it for a fresh Port on every connection attempt.
type Opener interface {
	Open(path string, baud int) (Port, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string, baud int) (Port, error)

func (f OpenerFunc) Open(path string, baud int) (Port, error) {
	return f(path, baud)
}
