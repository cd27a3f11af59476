package mediaremote

import (
	"image"
	"time"
)

// Keys of the now-playing info dictionary, as defined by the framework.
// The dictionary may contain keys beyond these; they are preserved in the
// raw map untouched.
const (
	KeyTitle       = "kMRMediaRemoteNowPlayingInfoTitle"
	KeyArtist      = "kMRMediaRemoteNowPlayingInfoArtist"
	KeyAlbum       = "kMRMediaRemoteNowPlayingInfoAlbum"
	KeyDuration    = "kMRMediaRemoteNowPlayingInfoDuration"
	KeyElapsedTime = "kMRMediaRemoteNowPlayingInfoElapsedTime"
	KeyArtworkData = "kMRMediaRemoteNowPlayingInfoArtworkData"
	KeyTimestamp   = "kMRMediaRemoteNowPlayingInfoTimestamp"
)

// NowPlayingInfo is a snapshot of the current media session. Every field is
// optional: the framework may omit any of them, and a missing field stays
// nil instead of defaulting. Snapshots are immutable; each update produces
// a new value.
type NowPlayingInfo struct {
	IsPlaying *bool

	Title       *string
	Artist      *string
	Album       *string
	AlbumCover  image.Image
	ElapsedTime *float64
	Duration    *float64
	UpdatedAt   *time.Time

	BundleID   *string
	BundleName *string
	BundleIcon image.Image
}

// TrackID returns a stable identity for the playing track, used by callers
// to detect track changes. Empty when no title is known.
func (i *NowPlayingInfo) TrackID() string {
	if i == nil || i.Title == nil {
		return ""
	}
	id := *i.Title
	if i.Artist != nil {
		id += "|" + *i.Artist
	}
	return id
}

// Position returns the elapsed playback time extrapolated to now. While
// playing, the wall time since the snapshot was taken is added to the
// recorded elapsed time, clamped to the track duration when known.
func (i *NowPlayingInfo) Position() (float64, bool) {
	if i == nil || i.ElapsedTime == nil {
		return 0, false
	}
	pos := *i.ElapsedTime
	if i.IsPlaying != nil && *i.IsPlaying && i.UpdatedAt != nil {
		pos += time.Since(*i.UpdatedAt).Seconds()
	}
	if i.Duration != nil && pos > *i.Duration {
		pos = *i.Duration
	}
	return pos, true
}

// InfoFromMap builds a NowPlayingInfo from a raw info dictionary. Only the
// known keys are lifted into fields; artwork data is decoded into an image
// and the timestamp, when present, becomes the snapshot time. Missing keys
// leave their fields nil.
func InfoFromMap(raw map[string]Value) *NowPlayingInfo {
	info := &NowPlayingInfo{}

	setString := func(key string, dst **string) {
		if s, ok := raw[key].String(); ok {
			v := s
			*dst = &v
		}
	}
	setFloat := func(key string, dst **float64) {
		switch v := raw[key]; v.Kind() {
		case KindFloat, KindInt, KindUint:
			if f, ok := v.Float64(); ok {
				fv := f
				*dst = &fv
			}
		}
	}

	setString(KeyTitle, &info.Title)
	setString(KeyArtist, &info.Artist)
	setString(KeyAlbum, &info.Album)
	setFloat(KeyDuration, &info.Duration)
	setFloat(KeyElapsedTime, &info.ElapsedTime)

	if d, ok := raw[KeyArtworkData].Data(); ok {
		if img, err := DecodeArtwork(d); err == nil {
			info.AlbumCover = img
		}
	}

	if t, ok := raw[KeyTimestamp].Time(); ok {
		info.UpdatedAt = &t
	} else {
		now := time.Now()
		info.UpdatedAt = &now
	}

	return info
}
