package mediaremote

import (
	"context"
	_ "embed"
	"encoding/json"
	"io"
	"os/exec"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// nowplaying.jxa dumps the session state as a single JSON object of the
// shape {isPlaying, client: {...}, info: {...}} on stdout.
//
//go:embed nowplaying.jxa
var probeScript string

// DefaultPollInterval is how often ScriptSession re-runs the probe.
const DefaultPollInterval = 3 * time.Second

// ScriptSession polls the osascript probe for session state. It is the
// slowest access path but needs neither the private framework in-process
// nor the packaged helper, only /usr/bin/osascript.
type ScriptSession struct {
	*broadcaster

	interval  time.Duration
	stop      chan struct{}
	running   atomic.Bool
	closeOnce sync.Once

	LogOutput   io.Writer
	Logger      zerolog.Logger
	initLogOnce sync.Once
}

// NewScriptSession starts polling at the given interval; zero means
// DefaultPollInterval.
func NewScriptSession(interval time.Duration) *ScriptSession {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	s := &ScriptSession{
		broadcaster: newBroadcaster(),
		interval:    interval,
		stop:        make(chan struct{}),
		Logger:      zerolog.Nop(),
	}
	s.running.Store(true)
	go s.pollLoop()
	return s
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is
// set.
func (s *ScriptSession) Log() *zerolog.Logger {
	if s.LogOutput != nil {
		s.initLogOnce.Do(func() {
			s.Logger = zerolog.New(s.LogOutput).With().Timestamp().Logger()
		})
	}
	return &s.Logger
}

func (s *ScriptSession) pollLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			s.running.Store(false)
			return
		case <-ticker.C:
			info, err := QueryScript(context.Background())
			if err != nil {
				s.Log().Debug().Err(err).Msg("probe run failed")
				continue
			}
			if info == nil {
				continue
			}
			if sameSnapshot(s.current(), info) {
				continue
			}
			if remote, err := Open(); err == nil {
				remote.fillBundleInfo(info)
			}
			s.replace(info)
			s.publish()
		}
	}
}

// sameSnapshot compares the fields the probe can produce, so unchanged
// polls do not wake listeners.
func sameSnapshot(a, b *NowPlayingInfo) bool {
	if a == nil || b == nil {
		return a == b
	}
	eq := func(x, y *string) bool {
		return (x == nil) == (y == nil) && (x == nil || *x == *y)
	}
	return eq(a.Title, b.Title) &&
		eq(a.Artist, b.Artist) &&
		eq(a.Album, b.Album) &&
		eq(a.BundleID, b.BundleID) &&
		reflect.DeepEqual(a.IsPlaying, b.IsPlaying) &&
		reflect.DeepEqual(a.Duration, b.Duration)
}

// GetInfo returns the latest polled snapshot, nil before the first
// successful poll.
func (s *ScriptSession) GetInfo() *NowPlayingInfo {
	return s.snapshot()
}

// Subscribe registers a listener invoked immediately and then on every
// changed poll result.
func (s *ScriptSession) Subscribe(listener func(*NowPlayingInfo)) ListenerToken {
	return s.subscribe(listener)
}

// Unsubscribe removes a listener; unknown tokens are ignored.
func (s *ScriptSession) Unsubscribe(token ListenerToken) {
	s.unsubscribe(token)
}

// Close stops the polling loop.
func (s *ScriptSession) Close() {
	s.closeOnce.Do(func() { close(s.stop) })
}

// QueryScript runs the probe once and parses its JSON output. Returns nil
// info with nil error when nothing is playing.
func QueryScript(ctx context.Context) (*NowPlayingInfo, error) {
	cmd := exec.CommandContext(ctx, "osascript", "-l", "JavaScript", "-e", probeScript)
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrap(err, "run probe script")
	}
	return parseSnapshotJSON(out)
}

// parseSnapshotJSON decodes the one-shot JSON shape shared by the probe
// script and the helper's get mode.
func parseSnapshotJSON(data []byte) (*NowPlayingInfo, error) {
	var raw helperSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse snapshot")
	}

	bundleID := raw.Client.ParentApplicationBundleIdentifier
	if bundleID == nil {
		bundleID = raw.Client.BundleIdentifier
	}
	if bundleID == nil {
		// No client at all: a well-formed "nothing playing" result.
		return nil, nil
	}

	info := &NowPlayingInfo{
		IsPlaying: raw.IsPlaying,
		BundleID:  bundleID,
	}

	str := func(key string) *string {
		if s, ok := raw.Info[key].(string); ok {
			return &s
		}
		return nil
	}
	num := func(key string) *float64 {
		if f, ok := raw.Info[key].(float64); ok {
			return &f
		}
		return nil
	}

	info.Title = str(KeyTitle)
	info.Artist = str(KeyArtist)
	info.Album = str(KeyAlbum)
	info.ElapsedTime = num(KeyElapsedTime)
	info.Duration = num(KeyDuration)

	if ts := num(KeyTimestamp); ts != nil {
		// The probe emits the timestamp in epoch milliseconds.
		t := time.Unix(0, int64(*ts*float64(time.Millisecond)))
		info.UpdatedAt = &t
	} else {
		now := time.Now()
		info.UpdatedAt = &now
	}

	return info, nil
}
