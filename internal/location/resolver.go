// Package location turns user input and client hints into places and coordinates.
package location

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/i474232898/climate-chat/internal/weather"
)

// Fallback is used whenever the geolocation capability is absent or fails.
var Fallback = weather.Coordinates{Lat: 40.7128, Lon: -74.0060}

// Locator is a best-effort geolocation capability.
type Locator interface {
	Locate(ctx context.Context) (weather.Coordinates, error)
}

// ResolveCoordinates asks loc for a position and falls back to Fallback.
func ResolveCoordinates(ctx context.Context, loc Locator) weather.Coordinates {
	if loc == nil {
		return Fallback
	}
	coords, err := loc.Locate(ctx)
	if err != nil {
		slog.Debug("geolocation unavailable, using fallback", "err", err)
		return Fallback
	}
	return coords
}

// place is a lazy run of letters, digits, underscores and spaces ending at
// "?", "." or the end of the message.
const place = `([\p{L}\p{N}_\s]+?)(?:\?|$|\.)`

// Most specific first; the last one is a deliberately broad catch-all.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)weather (?:in|at|for) ` + place),
	regexp.MustCompile(`(?i)temperature (?:in|at|for) ` + place),
	regexp.MustCompile(`(?i)(?:how's|what's|what is) (?:the weather|it) (?:like )?(?:in|at) ` + place),
	regexp.MustCompile(`(?i)forecast (?:for|in) ` + place),
	regexp.MustCompile(`(?i)(?:in|at) ` + place),
}

// ExtractLocation returns the place named in message, if any. The result is
// not validated; the weather gateway decides whether it exists.
func ExtractLocation(message string) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(message)
		if len(m) < 2 {
			continue
		}
		if loc := strings.TrimSpace(m[1]); loc != "" {
			return loc, true
		}
	}
	return "", false
}
