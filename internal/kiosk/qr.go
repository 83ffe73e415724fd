package kiosk

import (
	"net/url"
	"strings"
)

// QRRenderer builds image URLs for the external QR rendering service
type QRRenderer struct {
	BaseURL string
	Size    string
}

// ImageURL returns the renderer URL that draws payload as a QR code
func (r QRRenderer) ImageURL(payload string) string {
	sep := "?"
	if strings.Contains(r.BaseURL, "?") {
		sep = "&"
	}
	size := r.Size
	if size == "" {
		size = "200x200"
	}
	return r.BaseURL + sep + "size=" + escapeComponent(size) + "&data=" + escapeComponent(payload)
}

// componentUnescaper restores the characters encodeURIComponent leaves alone
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// escapeComponent percent-encodes s for a query value the way a browser's
// encodeURIComponent does
func escapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
