package mediaremote

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// NowPlaying is the cached, notification-driven view of the media session.
// It registers for change notifications, re-runs the query set on each one
// and keeps the latest NowPlayingInfo behind a read/write lock.
//
// Listeners are invoked on the notification delivery thread and must not
// block; see Subscribe.
type NowPlaying struct {
	remote *Remote
	*broadcaster

	observers []ObserverToken
	closeOnce sync.Once

	LogOutput   io.Writer
	Logger      zerolog.Logger
	initLogOnce sync.Once
}

// NewNowPlaying opens the framework, registers for notifications and
// primes the cache with the current session state. Fails with an error
// wrapping ErrUnavailable when the framework cannot be loaded.
//
// Call Close before process shutdown to detach the observers.
func NewNowPlaying() (*NowPlaying, error) {
	remote, err := Open()
	if err != nil {
		return nil, err
	}
	return newNowPlaying(remote), nil
}

func newNowPlaying(remote *Remote) *NowPlaying {
	np := &NowPlaying{
		remote:      remote,
		broadcaster: newBroadcaster(),
		Logger:      zerolog.Nop(),
	}

	notifications := remote.Notifications()
	notifications.Register()

	np.updateAll()

	observe := func(kind Notification, update func()) {
		np.observers = append(np.observers, notifications.AddObserver(kind, func() {
			update()
			np.publish()
		}))
	}
	observe(NotificationApplicationDidChange, np.updateApp)
	observe(NotificationInfoDidChange, np.updateInfo)
	observe(NotificationApplicationIsPlayingDidChange, np.updateState)

	return np
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is
// set.
func (np *NowPlaying) Log() *zerolog.Logger {
	if np.LogOutput != nil {
		np.initLogOnce.Do(func() {
			np.Logger = zerolog.New(np.LogOutput).With().Timestamp().Logger()
		})
	}
	return &np.Logger
}

// GetInfo returns the latest snapshot, or nil when no session has been
// observed. The returned value is immutable; elapsed time is extrapolated
// to the time of the call while playing.
func (np *NowPlaying) GetInfo() *NowPlayingInfo {
	return np.snapshot()
}

// Subscribe registers a listener invoked once immediately with the current
// snapshot and then once per update. Listeners run inside the notification
// delivery path; blocking ones delay other listeners and later updates.
func (np *NowPlaying) Subscribe(listener func(*NowPlayingInfo)) ListenerToken {
	return np.subscribe(listener)
}

// Unsubscribe removes a listener. Unknown or already-removed tokens are
// ignored.
func (np *NowPlaying) Unsubscribe(token ListenerToken) {
	np.unsubscribe(token)
}

// Close unregisters from notifications and detaches every observer. The
// cached snapshot remains readable afterwards but stops updating.
func (np *NowPlaying) Close() {
	np.closeOnce.Do(func() {
		notifications := np.remote.Notifications()
		notifications.Unregister()
		for _, token := range np.observers {
			notifications.RemoveObserver(token)
		}
	})
}

// updateAll reseeds the slot and runs the full query set. The three
// queries are independent of each other and block on separate framework
// round trips, so they run concurrently.
func (np *NowPlaying) updateAll() {
	np.replace(&NowPlayingInfo{})

	var g errgroup.Group
	g.Go(func() error { np.updateState(); return nil })
	g.Go(func() error { np.updateApp(); return nil })
	g.Go(func() error { np.updateInfo(); return nil })
	_ = g.Wait()
}

// updateState refreshes the is-playing flag.
func (np *NowPlaying) updateState() {
	if np.current() == nil {
		np.updateAll()
		return
	}
	if playing, ok := np.remote.IsPlaying(); ok {
		np.mutate(func(info *NowPlayingInfo) {
			info.IsPlaying = &playing
		})
	}
}

// updateInfo refreshes the track metadata from the info dictionary.
func (np *NowPlaying) updateInfo() {
	if np.current() == nil {
		np.updateAll()
		return
	}
	raw, ok := np.remote.Info()
	if !ok {
		return
	}

	fresh := InfoFromMap(raw)
	np.mutate(func(info *NowPlayingInfo) {
		if fresh.Title != nil {
			info.Title = fresh.Title
		}
		if fresh.Artist != nil {
			info.Artist = fresh.Artist
		}
		if fresh.Album != nil {
			info.Album = fresh.Album
		}
		if fresh.Duration != nil {
			info.Duration = fresh.Duration
		}
		if fresh.ElapsedTime != nil {
			info.ElapsedTime = fresh.ElapsedTime
		}
		if fresh.AlbumCover != nil {
			info.AlbumCover = fresh.AlbumCover
		}
		info.UpdatedAt = fresh.UpdatedAt
	})
}

// updateApp refreshes the owning application, preferring the parent app of
// helper processes over the client itself.
func (np *NowPlaying) updateApp() {
	if np.current() == nil {
		np.updateAll()
		return
	}

	id, ok := np.remote.ParentAppBundleIdentifier()
	if !ok {
		id, ok = np.remote.BundleIdentifier()
	}
	if !ok {
		return
	}

	bundle, found := np.remote.LookupBundle(id)
	if !found {
		return
	}
	np.mutate(func(info *NowPlayingInfo) {
		bundleID := id
		info.BundleID = &bundleID
		info.BundleName = &bundle.Name
		info.BundleIcon = bundle.Icon
	})
}

// sendIfActive dispatches a command only when a session has been observed,
// so an idle process does not make the OS launch the default media player.
func (np *NowPlaying) sendIfActive(c Command) bool {
	if np.current() == nil {
		return false
	}
	return np.remote.Send(c)
}

// Play starts playback. Reports the framework's acknowledgement.
func (np *NowPlaying) Play() bool { return np.sendIfActive(Cmd(CommandPlay)) }

// Pause pauses playback.
func (np *NowPlaying) Pause() bool { return np.sendIfActive(Cmd(CommandPause)) }

// Toggle switches between play and pause.
func (np *NowPlaying) Toggle() bool { return np.sendIfActive(Cmd(CommandTogglePlayPause)) }

// Next skips to the next track.
func (np *NowPlaying) Next() bool { return np.sendIfActive(Cmd(CommandNextTrack)) }

// Previous returns to the previous track.
func (np *NowPlaying) Previous() bool { return np.sendIfActive(Cmd(CommandPreviousTrack)) }

// Seek jumps to an absolute position in seconds.
func (np *NowPlaying) Seek(seconds float64) bool { return np.sendIfActive(SetElapsedTime(seconds)) }

// SetSpeed changes the playback rate multiplier.
func (np *NowPlaying) SetSpeed(multiplier int) bool {
	return np.sendIfActive(SetPlaybackSpeed(multiplier))
}
