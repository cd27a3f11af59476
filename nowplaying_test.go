package mediaremote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playingFake() *fakeFramework {
	fw := newFakeFramework()
	fw.playing = boolPtr(true)
	fw.info = map[string]Value{
		KeyTitle:  StringValue("Song A"),
		KeyArtist: StringValue("Artist B"),
	}
	return fw
}

// TestFacadeEndToEnd walks the reference scenario: the framework reports
// isPlaying=true with title and artist set, and after construction the
// cached slot holds exactly those fields with everything else absent.
func TestFacadeEndToEnd(t *testing.T) {
	np := newNowPlaying(newTestRemote(playingFake()))
	defer np.Close()

	info := np.GetInfo()
	require.NotNil(t, info)
	require.NotNil(t, info.IsPlaying)
	assert.True(t, *info.IsPlaying)
	require.NotNil(t, info.Title)
	assert.Equal(t, "Song A", *info.Title)
	require.NotNil(t, info.Artist)
	assert.Equal(t, "Artist B", *info.Artist)
	assert.Nil(t, info.Album)
	assert.Nil(t, info.Duration)
	assert.Nil(t, info.BundleID)
}

// TestFacadeUpdatesOnNotification changes the underlying session and
// posts the info-changed notification; the cached slot must follow.
func TestFacadeUpdatesOnNotification(t *testing.T) {
	fw := playingFake()
	np := newNowPlaying(newTestRemote(fw))
	defer np.Close()

	fw.mu.Lock()
	fw.info = map[string]Value{
		KeyTitle:  StringValue("Song B"),
		KeyArtist: StringValue("Artist B"),
	}
	fw.mu.Unlock()
	fw.post(NotificationInfoDidChange)

	info := np.GetInfo()
	require.NotNil(t, info)
	require.NotNil(t, info.Title)
	assert.Equal(t, "Song B", *info.Title)
}

// TestTwoListenersConsistentSnapshot subscribes two listeners and fires
// one notification: both must be invoked exactly once with the same
// snapshot values.
func TestTwoListenersConsistentSnapshot(t *testing.T) {
	fw := playingFake()
	np := newNowPlaying(newTestRemote(fw))
	defer np.Close()

	var first, second []*NowPlayingInfo
	np.Subscribe(func(i *NowPlayingInfo) { first = append(first, i) })
	np.Subscribe(func(i *NowPlayingInfo) { second = append(second, i) })

	// Each listener got its immediate snapshot on subscribe.
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	fw.post(NotificationInfoDidChange)

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	require.NotNil(t, first[1])
	require.NotNil(t, second[1])
	assert.Equal(t, *first[1].Title, *second[1].Title)
	assert.Equal(t, *first[1].Artist, *second[1].Artist)
}

// TestUnsubscribeStopsDelivery removes one of two listeners and checks
// only the remaining one sees the next notification.
func TestUnsubscribeStopsDelivery(t *testing.T) {
	fw := playingFake()
	np := newNowPlaying(newTestRemote(fw))
	defer np.Close()

	var removedCalls, keptCalls int
	token := np.Subscribe(func(*NowPlayingInfo) { removedCalls++ })
	np.Subscribe(func(*NowPlayingInfo) { keptCalls++ })

	np.Unsubscribe(token)
	// Unsubscribing twice is harmless.
	np.Unsubscribe(token)

	fw.post(NotificationInfoDidChange)

	assert.Equal(t, 1, removedCalls, "removed listener only saw the subscribe-time call")
	assert.Equal(t, 2, keptCalls)
}

// TestFacadeApp resolves the owning application through the client,
// preferring the parent app identifier.
func TestFacadeApp(t *testing.T) {
	fw := playingFake()
	fw.client = &fakeClient{bundleID: "com.example.helper", parentID: "com.example.player"}
	fw.bundles["com.example.player"] = fakeBundle{name: "Example Player"}

	np := newNowPlaying(newTestRemote(fw))
	defer np.Close()

	info := np.GetInfo()
	require.NotNil(t, info)
	require.NotNil(t, info.BundleID)
	assert.Equal(t, "com.example.player", *info.BundleID)
	require.NotNil(t, info.BundleName)
	assert.Equal(t, "Example Player", *info.BundleName)
}

// TestFacadeAppFallsBackToClientBundle uses the client's own identifier
// when no parent app exists.
func TestFacadeAppFallsBackToClientBundle(t *testing.T) {
	fw := playingFake()
	fw.client = &fakeClient{bundleID: "com.example.player"}
	fw.bundles["com.example.player"] = fakeBundle{name: "Example Player"}

	np := newNowPlaying(newTestRemote(fw))
	defer np.Close()

	info := np.GetInfo()
	require.NotNil(t, info)
	require.NotNil(t, info.BundleID)
	assert.Equal(t, "com.example.player", *info.BundleID)
}

// TestFacadeControls checks the convenience commands dispatch the right
// native identifiers and pass the acknowledgement through.
func TestFacadeControls(t *testing.T) {
	fw := playingFake()
	np := newNowPlaying(newTestRemote(fw))
	defer np.Close()

	assert.True(t, np.Play())
	assert.True(t, np.Pause())
	assert.True(t, np.Toggle())
	assert.True(t, np.Next())
	assert.True(t, np.Previous())
	assert.Equal(t, []int32{0, 1, 2, 4, 5}, fw.sentCommands())

	assert.True(t, np.Seek(120))
	assert.Equal(t, []float64{120}, fw.elapsed)

	assert.True(t, np.SetSpeed(2))
	assert.Equal(t, []int32{2}, fw.speeds)
}

// TestFacadeCloseDetaches verifies Close unregisters and removes every
// observer, and that further notifications no longer update the slot.
func TestFacadeCloseDetaches(t *testing.T) {
	fw := playingFake()
	np := newNowPlaying(newTestRemote(fw))

	np.Close()
	np.Close()

	assert.Equal(t, 1, fw.unregisterCalls)
	fw.mu.Lock()
	remaining := len(fw.observers)
	fw.mu.Unlock()
	assert.Equal(t, 0, remaining)
}
