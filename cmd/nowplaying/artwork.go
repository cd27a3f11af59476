package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/nfnt/resize"
)

// Check if terminal supports Kitty graphics protocol
func supportsKittyGraphics() bool {
	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	// Check TERM variable
	if strings.Contains(term, "kitty") || strings.Contains(term, "konsole") {
		return true
	}

	// Check TERM_PROGRAM for Ghostty and other terminals
	if termProgram == "ghostty" || termProgram == "WezTerm" {
		return true
	}

	return false
}

// hsl computes lightness and saturation for an 8-bit RGB triple
func hsl(r, g, b uint8) (lightness, saturation float64) {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	max := rf
	if gf > max {
		max = gf
	}
	if bf > max {
		max = bf
	}

	min := rf
	if gf < min {
		min = gf
	}
	if bf < min {
		min = bf
	}

	lightness = (max + min) / 2.0
	if max != min {
		if lightness > 0.5 {
			saturation = (max - min) / (2.0 - max - min)
		} else {
			saturation = (max - min) / (max + min)
		}
	}
	return lightness, saturation
}

// Extract dominant color from album art and convert to hex.
// Runs K-means over the image and picks the centroid that reads best on
// a dark background: vibrant and reasonably light.
func extractDominantColor(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}

	colors, err := prominentcolor.Kmeans(img)
	if err != nil || len(colors) == 0 {
		return "", fmt.Errorf("no suitable colors found")
	}

	bestScore := -1.0
	var best prominentcolor.ColorItem
	for _, c := range colors {
		lightness, saturation := hsl(uint8(c.Color.R), uint8(c.Color.G), uint8(c.Color.B))

		// Skip colors that are too dark, too light (near-white), or too unsaturated
		if lightness < 0.3 || lightness > 0.85 || saturation < 0.25 {
			continue
		}

		// Prefer vibrant colors that are readable but not washed out
		lightnessScore := lightness
		if lightness > 0.7 {
			lightnessScore = 0.7 - (lightness - 0.7)
		}
		score := (saturation * 2.5) + (lightnessScore * 1.5)

		if score > bestScore {
			bestScore = score
			best = c
		}
	}

	if bestScore < 0 {
		// Nothing readable among the centroids; fall back to the most
		// prominent one rather than failing the whole fetch.
		best = colors[0]
	}

	return fmt.Sprintf("#%02x%02x%02x", best.Color.R, best.Color.G, best.Color.B), nil
}

// Process and encode artwork for Kitty graphics protocol
func encodeArtworkForKitty(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}

	// Get config snapshot for this operation
	cfg := config.Get()

	// Resize maintaining aspect ratio - keep it reasonable for terminal display
	// We'll let Kitty handle the final sizing based on cell dimensions
	resized := resize.Resize(uint(cfg.Artwork.WidthPixels), 0, img, resize.Lanczos3)

	// Encode as PNG
	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	// Encode as base64 for Kitty protocol
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	// Kitty protocol needs chunking for large payloads (max 4096 bytes per chunk)
	const chunkSize = 4096
	var result strings.Builder

	// Use a fixed image ID and delete any previous image first
	const imageID = 42
	result.WriteString(fmt.Sprintf("\033_Ga=d,d=I,i=%d\033\\", imageID))

	if len(encoded) <= chunkSize {
		// Small enough to send in one go
		// Use columns (c) instead of pixels for zoom-independent sizing
		// Height is auto-calculated to maintain aspect ratio
		result.WriteString(fmt.Sprintf("\033_Ga=T,f=100,t=d,i=%d,c=%d,C=1;%s\033\\", imageID, cfg.Artwork.WidthColumns, encoded))
	} else {
		// Need to chunk the data
		for i := 0; i < len(encoded); i += chunkSize {
			end := i + chunkSize
			if end > len(encoded) {
				end = len(encoded)
			}
			chunk := encoded[i:end]

			if i == 0 {
				// First chunk with columns-based sizing
				result.WriteString(fmt.Sprintf("\033_Ga=T,f=100,t=d,i=%d,c=%d,C=1,m=1;%s\033\\", imageID, cfg.Artwork.WidthColumns, chunk))
			} else if end == len(encoded) {
				// Last chunk - m=0 (no more data)
				result.WriteString(fmt.Sprintf("\033_Gm=0;%s\033\\", chunk))
			} else {
				// Middle chunk - m=1 (more data coming)
				result.WriteString(fmt.Sprintf("\033_Gm=1;%s\033\\", chunk))
			}
		}
	}

	return result.String(), nil
}

// processArtwork extracts the accent color and Kitty-encodes the already
// decoded album cover in one pass
func processArtwork(img image.Image, extractColor bool) (color string, encoded string, err error) {
	if img == nil {
		return "", "", fmt.Errorf("nil image")
	}

	// Extract color if requested
	if extractColor {
		if c, err := extractDominantColor(img); err == nil && c != "" {
			color = c
		}
	}

	// Encode for Kitty protocol
	if enc, err := encodeArtworkForKitty(img); err == nil && enc != "" {
		encoded = enc
	}

	return color, encoded, nil
}
