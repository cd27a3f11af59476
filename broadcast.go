package mediaremote

import (
	"sync"

	"github.com/google/uuid"
)

// ListenerToken identifies a subscribed listener for Unsubscribe.
type ListenerToken string

// broadcaster is the shared slot-and-listeners core behind NowPlaying,
// HelperSession and ScriptSession. One read/write-locked slot holds the
// latest snapshot, replaced wholesale on each update; listeners are fanned
// out synchronously on the thread that produced the update.
type broadcaster struct {
	mu   sync.RWMutex
	info *NowPlayingInfo

	listenerMu sync.Mutex
	listeners  map[ListenerToken]func(*NowPlayingInfo)
}

func newBroadcaster() *broadcaster {
	return &broadcaster{listeners: make(map[ListenerToken]func(*NowPlayingInfo))}
}

// current returns the raw slot value.
func (b *broadcaster) current() *NowPlayingInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.info
}

// snapshot returns the slot value with elapsed time extrapolated to now.
// The stored snapshot is never mutated; extrapolation works on a copy.
func (b *broadcaster) snapshot() *NowPlayingInfo {
	b.mu.RLock()
	info := b.info
	b.mu.RUnlock()

	if info == nil || info.IsPlaying == nil || !*info.IsPlaying {
		return info
	}
	pos, ok := info.Position()
	if !ok {
		return info
	}

	extrapolated := *info
	extrapolated.ElapsedTime = &pos
	return &extrapolated
}

// replace stores a new snapshot and returns it.
func (b *broadcaster) replace(info *NowPlayingInfo) *NowPlayingInfo {
	b.mu.Lock()
	b.info = info
	b.mu.Unlock()
	return info
}

// mutate applies fn to a copy of the current snapshot and stores the
// result, so readers only ever observe whole snapshots.
func (b *broadcaster) mutate(fn func(*NowPlayingInfo)) *NowPlayingInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	next := &NowPlayingInfo{}
	if b.info != nil {
		copied := *b.info
		next = &copied
	}
	fn(next)
	b.info = next
	return next
}

// subscribe registers a listener and invokes it immediately with the
// current snapshot.
func (b *broadcaster) subscribe(listener func(*NowPlayingInfo)) ListenerToken {
	listener(b.snapshot())

	b.listenerMu.Lock()
	defer b.listenerMu.Unlock()
	token := ListenerToken(uuid.NewString())
	b.listeners[token] = listener
	return token
}

// unsubscribe removes a listener; unknown tokens are ignored.
func (b *broadcaster) unsubscribe(token ListenerToken) {
	b.listenerMu.Lock()
	defer b.listenerMu.Unlock()
	delete(b.listeners, token)
}

// publish invokes every listener with the current snapshot. Listeners run
// on the caller's thread; a slow listener delays the others and the next
// update, which is why listeners must not block.
func (b *broadcaster) publish() {
	info := b.current()

	b.listenerMu.Lock()
	listeners := make([]func(*NowPlayingInfo), 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.listenerMu.Unlock()

	for _, l := range listeners {
		l(info)
	}
}
