package main

import (
	"runtime"

	"github.com/soundctl/mediaremote"
)

// Session abstracts the access path to the media session so the UI does
// not care whether it talks to the framework directly or to the polling
// probe.
type Session interface {
	GetInfo() *mediaremote.NowPlayingInfo
	Toggle() bool
	Next() bool
	Previous() bool
	Close()
}

// newSession picks the best available access path: the in-process
// framework when it loads, the osascript probe otherwise.
func newSession() (Session, error) {
	np, err := mediaremote.NewNowPlaying()
	if err == nil {
		return np, nil
	}
	if runtime.GOOS == "darwin" {
		return &scriptSession{inner: mediaremote.NewScriptSession(0)}, nil
	}
	return nil, err
}

// scriptSession adapts the read-only polling probe to the Session
// interface. Controls are unavailable on this path and report failure.
type scriptSession struct {
	inner *mediaremote.ScriptSession
}

func (s *scriptSession) GetInfo() *mediaremote.NowPlayingInfo { return s.inner.GetInfo() }
func (s *scriptSession) Toggle() bool                         { return false }
func (s *scriptSession) Next() bool                           { return false }
func (s *scriptSession) Previous() bool                       { return false }
func (s *scriptSession) Close()                               { s.inner.Close() }
