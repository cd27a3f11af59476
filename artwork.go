package mediaremote

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// DecodeArtwork decodes artwork bytes into an image. The framework hands
// artwork over as raw image data, while the out-of-process adapters emit it
// base64-encoded (possibly with embedded newlines), so both forms are
// accepted.
func DecodeArtwork(data []byte) (image.Image, error) {
	imageData := data
	clean := strings.ReplaceAll(string(data), "\n", "")
	if decoded, err := base64.StdEncoding.DecodeString(clean); err == nil {
		imageData = decoded
	}

	if len(imageData) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}
