package mediaremote

import (
	"testing"
	"time"
)

func TestSubscribeInvokesImmediately(t *testing.T) {
	b := newBroadcaster()
	b.replace(&NowPlayingInfo{Title: strPtr("Song A")})

	var got []*NowPlayingInfo
	b.subscribe(func(i *NowPlayingInfo) { got = append(got, i) })

	if len(got) != 1 {
		t.Fatalf("listener invoked %d times on subscribe, want 1", len(got))
	}
	if got[0] == nil || got[0].Title == nil || *got[0].Title != "Song A" {
		t.Errorf("subscribe snapshot = %+v", got[0])
	}
}

func TestPublishFanOut(t *testing.T) {
	b := newBroadcaster()

	var a, c int
	b.subscribe(func(*NowPlayingInfo) { a++ })
	token := b.subscribe(func(*NowPlayingInfo) { c++ })

	b.replace(&NowPlayingInfo{})
	b.publish()
	assertEqual(t, a, 2, "first listener invocations")
	assertEqual(t, c, 2, "second listener invocations")

	b.unsubscribe(token)
	b.publish()
	assertEqual(t, a, 3, "first listener invocations after unsubscribe")
	assertEqual(t, c, 2, "second listener invocations after unsubscribe")
}

// TestSnapshotExtrapolates checks that reading the slot while playing
// advances the elapsed time without touching the stored value.
func TestSnapshotExtrapolates(t *testing.T) {
	b := newBroadcaster()
	past := time.Now().Add(-10 * time.Second)
	stored := &NowPlayingInfo{
		IsPlaying:   boolPtr(true),
		ElapsedTime: floatPtr(30),
		UpdatedAt:   timePtr(past),
	}
	b.replace(stored)

	snap := b.snapshot()
	if snap == nil || snap.ElapsedTime == nil {
		t.Fatal("snapshot missing elapsed time")
	}
	if *snap.ElapsedTime < 39.5 || *snap.ElapsedTime > 41 {
		t.Errorf("snapshot elapsed = %v, want ~40", *snap.ElapsedTime)
	}
	if *stored.ElapsedTime != 30 {
		t.Errorf("stored elapsed mutated to %v", *stored.ElapsedTime)
	}
}

// TestSnapshotPausedUntouched checks no extrapolation happens while the
// session is paused or empty.
func TestSnapshotPausedUntouched(t *testing.T) {
	b := newBroadcaster()
	if b.snapshot() != nil {
		t.Error("snapshot of empty slot should be nil")
	}

	past := time.Now().Add(-10 * time.Second)
	b.replace(&NowPlayingInfo{
		IsPlaying:   boolPtr(false),
		ElapsedTime: floatPtr(30),
		UpdatedAt:   timePtr(past),
	})
	snap := b.snapshot()
	if snap == nil || snap.ElapsedTime == nil {
		t.Fatal("snapshot missing elapsed time")
	}
	assertEqual(t, *snap.ElapsedTime, 30.0, "paused elapsed")
}

// TestMutateCopies verifies readers holding a previous snapshot never see
// a partial update.
func TestMutateCopies(t *testing.T) {
	b := newBroadcaster()
	b.replace(&NowPlayingInfo{Title: strPtr("Song A")})

	before := b.current()
	b.mutate(func(info *NowPlayingInfo) {
		info.Title = strPtr("Song B")
		info.Artist = strPtr("Artist B")
	})

	if *before.Title != "Song A" || before.Artist != nil {
		t.Errorf("previous snapshot mutated: %+v", before)
	}

	after := b.current()
	if *after.Title != "Song B" || *after.Artist != "Artist B" {
		t.Errorf("updated snapshot = %+v", after)
	}
}

// TestMutateFromEmpty seeds a snapshot when the slot is still nil.
func TestMutateFromEmpty(t *testing.T) {
	b := newBroadcaster()
	b.mutate(func(info *NowPlayingInfo) {
		info.Title = strPtr("Song A")
	})

	got := b.current()
	if got == nil || got.Title == nil || *got.Title != "Song A" {
		t.Errorf("slot after mutate = %+v", got)
	}
}
