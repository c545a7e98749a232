// Package broker hands a streaming agent reply from the goroutine producing it to the HTTP handler serving it.
package broker

import "context"

type publication[TID comparable, TPayload any] struct {
	id      TID
	channel chan TPayload
}

type subscription[TID comparable, TPayload any] struct {
	id      TID
	channel chan chan TPayload
}

// ChannelBroker passes a published channel to the first subscriber of its ID.
//
// The producer is the goroutine started by POST /messages that streams the agent reply. The first subscriber is
// the SSE handler. Later subscribers, typically reconnecting browsers, wait until the producer unpublishes and
// then read the persisted reply instead. A subscription to an ID that is not published is closed immediately.
type ChannelBroker[TID comparable, TPayload any] struct {
	publishCh   chan publication[TID, TPayload]
	unpublishCh chan TID
	subscribeCh chan subscription[TID, TPayload]
	done        chan struct{}
}

// NewChannelBroker creates a broker. Run it with [ChannelBroker.Start].
func NewChannelBroker[TID comparable, TPayload any]() *ChannelBroker[TID, TPayload] {
	return &ChannelBroker[TID, TPayload]{
		publishCh:   make(chan publication[TID, TPayload]),
		unpublishCh: make(chan TID),
		subscribeCh: make(chan subscription[TID, TPayload]),
		done:        make(chan struct{}),
	}
}

// Start serves publish, unpublish and subscribe requests until ctx is cancelled. Call it in its own goroutine.
// Waiting subscribers are released when it returns.
func (b *ChannelBroker[TID, TPayload]) Start(ctx context.Context) {
	published := map[TID]chan TPayload{}
	claimed := map[TID]bool{}
	waiting := map[TID][]chan chan TPayload{}

	defer func() {
		close(b.done)
		for _, subs := range waiting {
			for _, s := range subs {
				close(s)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case s := <-b.subscribeCh:
			c, ok := published[s.id]
			switch {
			case !ok:
				// Producer finished or never started.
				close(s.channel)
			case !claimed[s.id]:
				claimed[s.id] = true
				s.channel <- c
			default:
				waiting[s.id] = append(waiting[s.id], s.channel)
			}

		case p := <-b.publishCh:
			published[p.id] = p.channel

		case id := <-b.unpublishCh:
			for _, s := range waiting[id] {
				close(s)
			}
			delete(published, id)
			delete(claimed, id)
			delete(waiting, id)
		}
	}
}

// Subscribe asks for the channel published under id. The returned channel yields the published channel to the
// first subscriber. For everybody else it is closed, right away when nothing is published or once the producer
// unpublishes.
func (b *ChannelBroker[TID, TPayload]) Subscribe(id TID) <-chan chan TPayload {
	c := make(chan chan TPayload, 1)
	select {
	case b.subscribeCh <- subscription[TID, TPayload]{id: id, channel: c}:
	case <-b.done:
		close(c)
	}
	return c
}

// Publish makes channel available under id. Use an unbuffered channel so the producer blocks until the
// subscriber reads, and give the producer a timeout in case nobody subscribes.
func (b *ChannelBroker[TID, TPayload]) Publish(id TID, channel chan TPayload) {
	select {
	case b.publishCh <- publication[TID, TPayload]{id: id, channel: channel}:
	case <-b.done:
	}
}

// Unpublish removes id and releases the subscribers waiting on it.
func (b *ChannelBroker[TID, TPayload]) Unpublish(id TID) {
	select {
	case b.unpublishCh <- id:
	case <-b.done:
	}
}
