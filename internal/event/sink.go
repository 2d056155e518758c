package event

// Sink receives events from the engine. Implementations must not block;
// the engine emits inline between network operations.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// ChanSink forwards events to a channel. Sends never block; an event is
// dropped if the channel is full.
type ChanSink chan Event

func (s ChanSink) Emit(e Event) {
	select {
	case s <- e:
	default:
	}
}
