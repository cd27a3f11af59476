package mediaremote

import (
	"bytes"
	"image"

	_ "golang.org/x/image/tiff"
)

// BundleInfo describes the application behind a bundle identifier,
// independent of playback state.
type BundleInfo struct {
	Name string
	Icon image.Image
}

// LookupBundle resolves a bundle identifier to the application's display
// name and icon. Returns false when no installed application matches.
func (r *Remote) LookupBundle(id string) (*BundleInfo, bool) {
	name, iconBytes, ok := r.fw.lookupBundle(id)
	if !ok {
		return nil, false
	}

	info := &BundleInfo{Name: name}
	if len(iconBytes) > 0 {
		// Icons come back as TIFF representations.
		if img, _, err := image.Decode(bytes.NewReader(iconBytes)); err == nil {
			info.Icon = img
		}
	}
	return info, true
}

// fillBundleInfo attaches the application name and icon matching
// info.BundleID. A missing id or an unknown bundle leaves the fields nil.
func (r *Remote) fillBundleInfo(info *NowPlayingInfo) {
	if info == nil || info.BundleID == nil {
		return
	}
	bundle, ok := r.LookupBundle(*info.BundleID)
	if !ok {
		return
	}
	info.BundleName = &bundle.Name
	info.BundleIcon = bundle.Icon
}
