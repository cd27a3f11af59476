package mediaremote

import "testing"

func TestSameSnapshot(t *testing.T) {
	base := func() *NowPlayingInfo {
		return &NowPlayingInfo{
			IsPlaying: boolPtr(true),
			Title:     strPtr("Song A"),
			Artist:    strPtr("Artist B"),
			Album:     strPtr("Album C"),
			Duration:  floatPtr(215.5),
			BundleID:  strPtr("com.example.player"),
		}
	}

	tests := []struct {
		name   string
		mutate func(*NowPlayingInfo)
		want   bool
	}{
		{"identical", func(*NowPlayingInfo) {}, true},
		{"title changed", func(i *NowPlayingInfo) { i.Title = strPtr("Song B") }, false},
		{"artist changed", func(i *NowPlayingInfo) { i.Artist = strPtr("Artist C") }, false},
		{"album dropped", func(i *NowPlayingInfo) { i.Album = nil }, false},
		{"state flipped", func(i *NowPlayingInfo) { i.IsPlaying = boolPtr(false) }, false},
		{"duration changed", func(i *NowPlayingInfo) { i.Duration = floatPtr(100) }, false},
		{"app changed", func(i *NowPlayingInfo) { i.BundleID = strPtr("com.example.other") }, false},
		// Elapsed time drifts on every poll and must not count as a change.
		{"elapsed drifted", func(i *NowPlayingInfo) { i.ElapsedTime = floatPtr(50) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base()
			tt.mutate(other)
			if got := sameSnapshot(base(), other); got != tt.want {
				t.Errorf("sameSnapshot() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSameSnapshotNil(t *testing.T) {
	if !sameSnapshot(nil, nil) {
		t.Error("two nils should compare equal")
	}
	if sameSnapshot(nil, &NowPlayingInfo{}) || sameSnapshot(&NowPlayingInfo{}, nil) {
		t.Error("nil and non-nil should compare unequal")
	}
}

func TestScriptSessionLifecycle(t *testing.T) {
	s := NewScriptSession(DefaultPollInterval)
	if s.GetInfo() != nil {
		t.Error("snapshot should be nil before the first poll")
	}

	called := 0
	s.Subscribe(func(*NowPlayingInfo) { called++ })
	assertEqual(t, called, 1, "immediate subscribe invocation")

	s.Close()
	s.Close()
}

func TestScriptSessionDefaultInterval(t *testing.T) {
	s := NewScriptSession(0)
	defer s.Close()
	assertEqual(t, s.interval, DefaultPollInterval, "poll interval")
}

func TestProbeScriptEmbedded(t *testing.T) {
	if len(probeScript) == 0 {
		t.Fatal("probe script is empty")
	}
}
