package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// configError describes a single invalid configuration field
type configError struct {
	field   string
	message string
}

func (e configError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

// isValidColor accepts ANSI color codes (0-255) and hex colors (#RGB or #RRGGBB)
func isValidColor(color string) bool {
	if color == "" {
		return false
	}

	// Hex color
	if strings.HasPrefix(color, "#") {
		hex := color[1:]
		if len(hex) != 3 && len(hex) != 6 {
			return false
		}
		for _, c := range hex {
			if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
				return false
			}
		}
		return true
	}

	// ANSI code
	n, err := strconv.Atoi(color)
	if err != nil {
		return false
	}
	return n >= 0 && n <= 255
}

// validateConfig checks every field for sane values and returns one error
// per invalid field
func validateConfig(cfg *Config) []error {
	var errs []error

	if !isValidColor(cfg.UI.Color) {
		errs = append(errs, configError{"ui.color", fmt.Sprintf("invalid color format '%s'", cfg.UI.Color)})
	}
	if cfg.UI.ColorMode != "manual" && cfg.UI.ColorMode != "auto" {
		errs = append(errs, configError{"ui.color_mode", fmt.Sprintf("must be 'manual' or 'auto' (got '%s')", cfg.UI.ColorMode)})
	}
	if cfg.UI.MaxWidth < 20 {
		errs = append(errs, configError{"ui.max_width", fmt.Sprintf("must be at least 20 (got %d)", cfg.UI.MaxWidth)})
	}

	if cfg.Artwork.Padding < 0 || cfg.Artwork.Padding >= cfg.UI.MaxWidth {
		errs = append(errs, configError{"artwork.padding", fmt.Sprintf("must be between 0 and max_width (got %d)", cfg.Artwork.Padding)})
	}
	if cfg.Artwork.WidthPixels < 1 {
		errs = append(errs, configError{"artwork.width_pixels", fmt.Sprintf("must be positive (got %d)", cfg.Artwork.WidthPixels)})
	}
	if cfg.Artwork.WidthColumns < 1 {
		errs = append(errs, configError{"artwork.width_columns", fmt.Sprintf("must be positive (got %d)", cfg.Artwork.WidthColumns)})
	}

	if cfg.Text.MaxLengthWithArt < 1 || cfg.Text.MaxLengthWithArt > 100 {
		errs = append(errs, configError{"text.max_length_with_art", fmt.Sprintf("must be between 1 and 100 (got %d)", cfg.Text.MaxLengthWithArt)})
	}
	if cfg.Text.MaxLengthNoArt < 1 || cfg.Text.MaxLengthNoArt > 100 {
		errs = append(errs, configError{"text.max_length_no_art", fmt.Sprintf("must be between 1 and 100 (got %d)", cfg.Text.MaxLengthNoArt)})
	}

	if cfg.Timing.UIRefreshMs < 10 {
		errs = append(errs, configError{"timing.ui_refresh_ms", fmt.Sprintf("must be at least 10 (got %d)", cfg.Timing.UIRefreshMs)})
	}
	if cfg.Timing.DataFetchMs < 100 || cfg.Timing.DataFetchMs > 60000 {
		errs = append(errs, configError{"timing.data_fetch_ms", fmt.Sprintf("must be between 100 and 60000 (got %d)", cfg.Timing.DataFetchMs)})
	}

	return errs
}

// applyDefaultsForInvalidFields resets only the fields named in the
// validation errors back to their defaults, keeping valid settings
func applyDefaultsForInvalidFields(cfg *Config, errs []error) {
	for _, err := range errs {
		ce, ok := err.(configError)
		if !ok {
			continue
		}
		switch ce.field {
		case "ui.color":
			cfg.UI.Color = "2"
		case "ui.color_mode":
			cfg.UI.ColorMode = "manual"
		case "ui.max_width":
			cfg.UI.MaxWidth = 45
		case "artwork.padding":
			cfg.Artwork.Padding = 15
		case "artwork.width_pixels":
			cfg.Artwork.WidthPixels = 300
		case "artwork.width_columns":
			cfg.Artwork.WidthColumns = 13
		case "text.max_length_with_art":
			cfg.Text.MaxLengthWithArt = 22
		case "text.max_length_no_art":
			cfg.Text.MaxLengthNoArt = 36
		case "timing.ui_refresh_ms":
			cfg.Timing.UIRefreshMs = 100
		case "timing.data_fetch_ms":
			cfg.Timing.DataFetchMs = 1000
		}
	}
}

// printConfigWarnings reports invalid fields on stderr at startup
func printConfigWarnings(errs []error) {
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "Warning: config %v\n", err)
	}
}
