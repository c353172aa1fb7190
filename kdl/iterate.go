package kdl

import (
	"io"

	"github.com/kdl-lang/kdl/event"
)

// channelSink adapts the push Sink interface onto a channel, letting the
// parse run on its own goroutine while Iterate's caller pulls one event
// at a time — an explicit producer/consumer handoff rather than
// pre-buffering the whole event stream.
type channelSink struct {
	out chan<- event.Event
	// stop is closed if the caller abandons the iterator before EOF, so
	// the producer goroutine does not block forever on a send nobody
	// will receive.
	stop <-chan struct{}
}

func (s channelSink) OnEvent(e event.Event) error {
	select {
	case s.out <- e:
		return nil
	case <-s.stop:
		return errIteratorAbandoned
	}
}

var errIteratorAbandoned = &Error{Kind: ResourceError, Message: "event iterator abandoned before end of stream"}

// ChannelIterator is the event.Iterator returned by Iterate/IterateReader.
type ChannelIterator struct {
	events chan event.Event
	errc   chan error
	stop   chan struct{}
	done   bool
	err    error
}

func newChannelIterator(run func(sink event.Sink) error) *ChannelIterator {
	events := make(chan event.Event)
	errc := make(chan error, 1)
	stop := make(chan struct{})
	it := &ChannelIterator{events: events, errc: errc, stop: stop}
	go func() {
		defer close(events)
		errc <- run(channelSink{out: events, stop: stop})
	}()
	return it
}

// Next implements event.Iterator.
func (it *ChannelIterator) Next() (event.Event, bool) {
	if it.done {
		return event.Event{}, false
	}
	e, ok := <-it.events
	if !ok {
		it.done = true
		if err := <-it.errc; err != nil && err != errIteratorAbandoned {
			it.err = wrapParseError(err)
		}
		return event.Event{}, false
	}
	return e, true
}

// Err implements event.Iterator: non-nil only after Next has returned
// false because of a terminal parse failure, never for a clean EOF.
func (it *ChannelIterator) Err() error { return it.err }

// Close releases the producer goroutine if the caller stops pulling
// before reaching end of stream. Safe to call after EOF (a no-op).
func (it *ChannelIterator) Close() {
	if it.done {
		return
	}
	close(it.stop)
	for range it.events {
		// drain so the producer goroutine's deferred close(events) and
		// errc send both complete instead of leaking.
	}
	<-it.errc
	it.done = true
}

// Iterate returns a pull event.Iterator over source.
func Iterate(source []byte, opts ...ParseOption) *ChannelIterator {
	return newChannelIterator(func(sink event.Sink) error {
		return ParseWithSink(source, sink, opts...)
	})
}

// IterateReader returns a pull event.Iterator over r.
func IterateReader(r io.Reader, opts ...ParseOption) *ChannelIterator {
	return newChannelIterator(func(sink event.Sink) error {
		return ParseReaderWithSink(r, sink, opts...)
	})
}
