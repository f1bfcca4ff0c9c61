// Package device turns raw User-Agent strings into short display names for
// audit history, "Chrome on Mac OS X" rather than the full header.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Describe parses a raw User-Agent header into a human-readable device name.
// Unparseable parts fall back to "Unknown" placeholders rather than failing.
func Describe(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)

	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	platform := ua.OS()
	if ua.Mobile() && ua.Platform() != "" {
		platform = ua.Platform()
	}
	if platform == "" {
		platform = "Unknown OS"
	}

	return strings.Join(strings.Fields(browser+" on "+platform), " ")
}
