package main

import (
	"fmt"
	"strings"
)

// scrollGap separates the tail of a scrolling text from its next pass.
const scrollGap = "  •  "

// formatTime converts seconds to MM:SS format
func formatTime(seconds int64) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// scrollText returns a window of max runes into text, shifted by offset
// and wrapping through scrollGap. Text that already fits comes back
// unchanged.
func scrollText(text string, max int, offset int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	loop := append(runes, []rune(scrollGap)...)
	offset %= len(loop)

	var b strings.Builder
	for i := 0; i < max; i++ {
		b.WriteRune(loop[(offset+i)%len(loop)])
	}
	return b.String()
}
