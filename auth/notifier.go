package auth

import "sync"

// notifier fans session events out to subscribers. Callbacks run on the
// goroutine that triggered the event and must not block.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]func(Event))}
}

func (n *notifier) subscribe(fn func(Event)) Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	n.subs[id] = fn
	return &subscription{n: n, id: id}
}

func (n *notifier) publish(e Event) {
	n.mu.Lock()
	fns := make([]func(Event), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}

func (n *notifier) len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

type subscription struct {
	n    *notifier
	id   int
	once sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.n.mu.Lock()
		delete(s.n.subs, s.id)
		s.n.mu.Unlock()
	})
}
