package mediaremote

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// helperPayload is one update emitted by the adapter helper on its stdout
// stream. Fields the helper omits stay nil.
type helperPayload struct {
	Playing          *bool    `json:"playing"`
	Title            *string  `json:"title"`
	Artist           *string  `json:"artist"`
	Album            *string  `json:"album"`
	ElapsedTime      *float64 `json:"elapsedTime"`
	Duration         *float64 `json:"duration"`
	Timestamp        *float64 `json:"timestamp"`
	BundleIdentifier *string  `json:"bundleIdentifier"`
	ArtworkData      *string  `json:"artworkData"`
}

type helperEnvelope struct {
	Payload *helperPayload `json:"payload"`
}

// HelperSession drives the packaged mediaremote-adapter helper as a child
// process instead of loading the private framework in-process. The helper
// streams one JSON object per line; each payload replaces the cached
// snapshot and is fanned out to listeners.
//
// Use it where in-process loading is undesirable, e.g. sandboxed hosts.
type HelperSession struct {
	*broadcaster

	scriptPath    string
	frameworkPath string

	cmd       *exec.Cmd
	running   atomic.Bool
	closeOnce sync.Once

	mu     sync.Mutex
	err    error
	closed bool

	LogOutput   io.Writer
	Logger      zerolog.Logger
	initLogOnce sync.Once
}

// NewHelperSession starts the helper in streaming mode. scriptPath is the
// unpacked mediaremote-adapter.pl, frameworkPath the companion adapter
// framework bundle it loads.
func NewHelperSession(scriptPath, frameworkPath string) (*HelperSession, error) {
	s := &HelperSession{
		broadcaster:   newBroadcaster(),
		scriptPath:    scriptPath,
		frameworkPath: frameworkPath,
		Logger:        zerolog.Nop(),
	}

	cmd := exec.Command("/usr/bin/perl", scriptPath, frameworkPath, "stream", "--no-diff")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "helper stdout pipe")
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "start helper")
	}

	s.cmd = cmd
	s.running.Store(true)
	go s.readLoop(stdout)

	return s, nil
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is
// set.
func (s *HelperSession) Log() *zerolog.Logger {
	if s.LogOutput != nil {
		s.initLogOnce.Do(func() {
			s.Logger = zerolog.New(s.LogOutput).With().Timestamp().Logger()
		})
	}
	return &s.Logger
}

func (s *HelperSession) readLoop(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	// Artwork payloads can be large; a plain line buffer is not enough.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		if !s.running.Load() {
			break
		}
		var envelope helperEnvelope
		if err := json.Unmarshal(scanner.Bytes(), &envelope); err != nil {
			s.Log().Debug().Err(err).Msg("skipping malformed helper line")
			continue
		}
		if envelope.Payload == nil {
			continue
		}
		s.apply(envelope.Payload)
	}

	s.running.Store(false)
	if s.cmd != nil {
		_ = s.cmd.Wait()
	}
	s.mu.Lock()
	if !s.closed {
		s.err = ErrHelperExited
	}
	s.mu.Unlock()
	s.Log().Debug().Msg("helper stream ended")
}

// apply converts a payload into a snapshot, stores it and notifies
// listeners.
func (s *HelperSession) apply(p *helperPayload) {
	info := infoFromHelperPayload(p)
	if remote, err := Open(); err == nil {
		remote.fillBundleInfo(info)
	}
	s.replace(info)
	s.publish()
}

func infoFromHelperPayload(p *helperPayload) *NowPlayingInfo {
	info := &NowPlayingInfo{
		IsPlaying:   p.Playing,
		Title:       p.Title,
		Artist:      p.Artist,
		Album:       p.Album,
		ElapsedTime: p.ElapsedTime,
		Duration:    p.Duration,
		BundleID:    p.BundleIdentifier,
	}

	if p.Timestamp != nil {
		t := time.Unix(0, int64(*p.Timestamp*float64(time.Second)))
		info.UpdatedAt = &t
	} else {
		now := time.Now()
		info.UpdatedAt = &now
	}

	if p.ArtworkData != nil {
		if img, err := DecodeArtwork([]byte(*p.ArtworkData)); err == nil {
			info.AlbumCover = img
		}
	}

	return info
}

// GetInfo returns the latest snapshot received from the helper, with
// elapsed time extrapolated to now while playing. Nil until the first
// payload arrives.
func (s *HelperSession) GetInfo() *NowPlayingInfo {
	return s.snapshot()
}

// Subscribe registers a listener invoked immediately with the current
// snapshot and then once per helper update.
func (s *HelperSession) Subscribe(listener func(*NowPlayingInfo)) ListenerToken {
	return s.subscribe(listener)
}

// Unsubscribe removes a listener; unknown tokens are ignored.
func (s *HelperSession) Unsubscribe(token ListenerToken) {
	s.unsubscribe(token)
}

// Running reports whether the helper process is still streaming.
func (s *HelperSession) Running() bool {
	return s.running.Load()
}

// Err reports why the stream stopped. It returns ErrHelperExited once the
// helper process terminates on its own, and nil while the stream is live
// or after a deliberate Close.
func (s *HelperSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the stream and terminates the helper process.
func (s *HelperSession) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.running.Store(false)
		if s.cmd != nil && s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
	})
}

// helperSnapshot is the single response object of the helper's one-shot
// mode: {isPlaying, client: {...}, info: {...}}.
type helperSnapshot struct {
	IsPlaying *bool `json:"isPlaying"`
	Client    struct {
		BundleIdentifier                  *string `json:"bundleIdentifier"`
		ParentApplicationBundleIdentifier *string `json:"parentApplicationBundleIdentifier"`
	} `json:"client"`
	Info map[string]any `json:"info"`
}

// QueryHelper runs the helper once and parses its single JSON response
// into a snapshot. Returns nil info with nil error when the helper reports
// no session, matching the absence contract of the in-process queries.
func QueryHelper(ctx context.Context, scriptPath, frameworkPath string) (*NowPlayingInfo, error) {
	cmd := exec.CommandContext(ctx, "/usr/bin/perl", scriptPath, frameworkPath, "get")
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrap(err, "run helper")
	}
	return parseSnapshotJSON(out)
}
