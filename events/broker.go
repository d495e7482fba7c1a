package events

import (
	"sync/atomic"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Broker fans published events out to subscriber channels.
//
// A single internal loop owns the subscriber map, and the public methods talk
// to it through channels, so no mutex is needed. Slow subscribers are skipped
// rather than blocking the loop.
type Broker struct {
	subscribeCh   chan chan cloudevents.Event
	unsubscribeCh chan chan cloudevents.Event
	publishCh     chan cloudevents.Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

func NewBroker() *Broker {
	b := &Broker{
		subscribeCh:   make(chan chan cloudevents.Event),
		unsubscribeCh: make(chan chan cloudevents.Event),
		publishCh:     make(chan cloudevents.Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	subscribers := make(map[chan cloudevents.Event]struct{})

	for {
		select {
		case <-b.stopCh:
			for ch := range subscribers {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			subscribers[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := subscribers[ch]; ok {
				delete(subscribers, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			for ch := range subscribers {
				select {
				case ch <- event:
				default:
					// Subscriber buffer full; skip to keep the loop moving.
				}
			}

		case resp := <-b.countReqCh:
			resp <- len(subscribers)
		}
	}
}

// Close stops the loop and closes all subscriber channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Broker) Subscribe() chan cloudevents.Event {
	ch := make(chan cloudevents.Event, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(ch chan cloudevents.Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// SubscriberCount returns the number of registered subscribers.
func (b *Broker) SubscriberCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all subscribers.
func (b *Broker) Publish(event cloudevents.Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}
