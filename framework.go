package mediaremote

import (
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultQueryTimeout bounds every synchronous query. The framework may
// simply never answer (no compatible application running), so the bound is
// kept short enough for UI-facing callers.
const DefaultQueryTimeout = 500 * time.Millisecond

// Client is a short-lived reference to the native now-playing client
// object. It is only valid inside the WithClient callback that produced
// it: the framework controls the underlying object's lifetime and may
// deallocate or reuse it at any point afterwards. Never store a Client.
type Client interface {
	// BundleIdentifier returns the client's own bundle identifier.
	BundleIdentifier() (string, bool)
	// ParentAppBundleIdentifier returns the bundle identifier of the
	// application that owns the client, when the client belongs to a
	// helper process of a larger app.
	ParentAppBundleIdentifier() (string, bool)
}

// framework is the capability table resolved from the loaded bundle. Query
// entry points deliver their result through a callback on an internal
// queue; the Remote layer adds the block-with-timeout protocol on top.
// deliver is invoked at most once, with ok=false for a null result.
type framework interface {
	isPlaying(deliver func(playing bool, ok bool))
	applicationPID(deliver func(pid int, ok bool))
	nowPlayingInfo(deliver func(raw map[string]Value, ok bool))
	nowPlayingClient(deliver func(c Client, ok bool))

	sendCommand(id int32) bool
	setElapsedTime(seconds float64)
	setPlaybackSpeed(speed int32)

	registerForNotifications()
	unregisterForNotifications()
	addObserver(name string, fn func()) uintptr
	removeObserver(handle uintptr)

	lookupBundle(id string) (name string, icon []byte, ok bool)
}

// Remote exposes the synchronous query and command surface of the loaded
// framework. Obtain one from Open; the zero value is not usable.
type Remote struct {
	fw framework

	// QueryTimeout bounds each blocking query. Zero means
	// DefaultQueryTimeout.
	QueryTimeout time.Duration

	// LogOutput enables logging when set. Queries and commands are logged
	// at debug level.
	LogOutput   io.Writer
	Logger      zerolog.Logger
	initLogOnce sync.Once

	notifyOnce sync.Once
	notify     *Notifications
}

var (
	openOnce   sync.Once
	openRemote *Remote
	openErr    error
)

// Open loads the MediaRemote framework and resolves its symbols. The load
// happens once per process and the outcome is cached: after a failure every
// later Open returns the same error wrapping ErrUnavailable, without
// re-attempting the load. The framework stays loaded until process exit;
// there is no teardown.
func Open() (*Remote, error) {
	openOnce.Do(func() {
		fw, err := loadFramework()
		if err != nil {
			openErr = err
			return
		}
		openRemote = newRemote(fw)
	})
	return openRemote, openErr
}

func newRemote(fw framework) *Remote {
	return &Remote{fw: fw, QueryTimeout: DefaultQueryTimeout, Logger: zerolog.Nop()}
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is
// set.
func (r *Remote) Log() *zerolog.Logger {
	if r.LogOutput != nil {
		r.initLogOnce.Do(func() {
			r.Logger = zerolog.New(r.LogOutput).With().Timestamp().Logger()
		})
	}
	return &r.Logger
}

func (r *Remote) timeout() time.Duration {
	if r.QueryTimeout > 0 {
		return r.QueryTimeout
	}
	return DefaultQueryTimeout
}

// await runs one blocking query round: issue hands the framework a deliver
// callback, and the caller blocks until the callback fires or the timeout
// elapses. A timed-out query reports absence; the late callback, if it ever
// fires, is dropped.
func await[T any](r *Remote, issue func(deliver func(T, bool))) (T, bool) {
	type result struct {
		v  T
		ok bool
	}
	ch := make(chan result, 1)
	issue(func(v T, ok bool) {
		select {
		case ch <- result{v: v, ok: ok}:
		default:
		}
	})
	select {
	case res := <-ch:
		return res.v, res.ok
	case <-time.After(r.timeout()):
		var zero T
		return zero, false
	}
}

// IsPlaying reports whether the now-playing application is actively
// playing. ok is false when the framework did not answer within the
// timeout; that is a normal outcome when nothing is playing.
func (r *Remote) IsPlaying() (bool, bool) {
	playing, ok := await(r, r.fw.isPlaying)
	r.Log().Debug().Bool("playing", playing).Bool("ok", ok).Msg("is-playing query")
	return playing, ok
}

// ApplicationPID returns the process id of the now-playing application.
func (r *Remote) ApplicationPID() (int, bool) {
	return await(r, r.fw.applicationPID)
}

// Info returns the raw now-playing info dictionary. Every key the
// framework sent is present; values the package cannot decode appear with
// KindUnsupported. ok is false on timeout or when no session exists.
func (r *Remote) Info() (map[string]Value, bool) {
	return await(r, r.fw.nowPlayingInfo)
}

// WithClient runs fn with the current now-playing client reference. The
// reference must not escape fn; see Client. Returns false when no client
// exists or the framework did not answer in time, in which case fn is not
// called: a client delivered after the timeout is discarded.
func (r *Remote) WithClient(fn func(Client)) bool {
	var mu sync.Mutex
	done := false
	ch := make(chan bool, 1)

	r.fw.nowPlayingClient(func(c Client, ok bool) {
		mu.Lock()
		defer mu.Unlock()
		if done {
			return
		}
		done = true
		if ok {
			fn(c)
		}
		ch <- ok
	})

	select {
	case ok := <-ch:
		return ok
	case <-time.After(r.timeout()):
		mu.Lock()
		defer mu.Unlock()
		if done {
			// The answer landed while the timer was firing; honor it.
			// fn has already completed under the mutex.
			return <-ch
		}
		done = true
		return false
	}
}

// BundleIdentifier returns the bundle identifier of the now-playing
// client. The underlying native string is copied before the short-lived
// client reference goes away.
func (r *Remote) BundleIdentifier() (string, bool) {
	var id string
	var found bool
	ok := r.WithClient(func(c Client) {
		id, found = c.BundleIdentifier()
	})
	return id, ok && found
}

// ParentAppBundleIdentifier returns the bundle identifier of the
// application owning the now-playing client.
func (r *Remote) ParentAppBundleIdentifier() (string, bool) {
	var id string
	var found bool
	ok := r.WithClient(func(c Client) {
		id, found = c.ParentAppBundleIdentifier()
	})
	return id, ok && found
}
