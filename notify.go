package mediaremote

import (
	"sync"

	"github.com/google/uuid"
)

// Notification names the framework posts through the default notification
// center once the process is registered.
type Notification string

const (
	NotificationInfoDidChange                    Notification = "kMRMediaRemoteNowPlayingInfoDidChangeNotification"
	NotificationPlaybackQueueDidChange           Notification = "kMRMediaRemoteNowPlayingPlaybackQueueDidChangeNotification"
	NotificationApplicationDidChange             Notification = "kMRMediaRemoteNowPlayingApplicationDidChangeNotification"
	NotificationApplicationIsPlayingDidChange    Notification = "kMRMediaRemoteNowPlayingApplicationIsPlayingDidChangeNotification"
	NotificationPickableRoutesDidChange          Notification = "kMRMediaRemotePickableRoutesDidChangeNotification"
	NotificationRouteStatusDidChange             Notification = "kMRMediaRemoteRouteStatusDidChangeNotification"
	NotificationPlaybackQueueChanged             Notification = "kMRNowPlayingPlaybackQueueChangedNotification"
	NotificationPlaybackQueueContentItemsChanged Notification = "kMRPlaybackQueueContentItemsChangedNotification"
	NotificationApplicationClientStateDidChange  Notification = "kMRMediaRemoteNowPlayingApplicationClientStateDidChange"
)

// ObserverToken correlates a registered callback with its underlying
// notification subscription. Its only use is RemoveObserver.
type ObserverToken string

// Notifications is the process-wide registration for now-playing change
// events. It has two states, unregistered and registered, and both
// transitions are idempotent.
//
// AddObserver before Register is not an error, but no notifications are
// delivered until Register is called; ordering is the caller's
// responsibility. Callbacks run on the notification delivery thread and
// must not block, since they hold up subsequent deliveries.
type Notifications struct {
	r *Remote

	mu         sync.Mutex
	registered bool
	observers  map[ObserverToken]uintptr
}

// Notifications returns the relay for this Remote. Open hands out one
// Remote per process, so the relay matches the framework's process-level
// registration.
func (r *Remote) Notifications() *Notifications {
	r.notifyOnce.Do(func() {
		r.notify = &Notifications{r: r, observers: make(map[ObserverToken]uintptr)}
	})
	return r.notify
}

// Register tells the framework to start emitting now-playing notifications
// for this process. Calling it while already registered is a no-op.
func (n *Notifications) Register() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.registered {
		return
	}
	n.r.fw.registerForNotifications()
	n.registered = true
	n.r.Log().Debug().Msg("registered for now-playing notifications")
}

// Unregister stops notification delivery. Safe to call in any state, with
// or without observers remaining.
func (n *Notifications) Unregister() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.registered {
		return
	}
	n.r.fw.unregisterForNotifications()
	n.registered = false
	n.r.Log().Debug().Msg("unregistered from now-playing notifications")
}

// AddObserver attaches fn to one notification kind. fn is invoked once per
// matching delivery for as long as the observer stays attached.
func (n *Notifications) AddObserver(kind Notification, fn func()) ObserverToken {
	handle := n.r.fw.addObserver(string(kind), fn)

	n.mu.Lock()
	defer n.mu.Unlock()
	token := ObserverToken(uuid.NewString())
	n.observers[token] = handle
	return token
}

// RemoveObserver detaches a previously added observer. Removing a token
// twice, or a token that was never issued, is a no-op.
func (n *Notifications) RemoveObserver(token ObserverToken) {
	n.mu.Lock()
	defer n.mu.Unlock()
	handle, ok := n.observers[token]
	if !ok {
		return
	}
	delete(n.observers, token)
	n.r.fw.removeObserver(handle)
}
