package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimeWindow is the server-side recency filter.
type TimeWindow string

const (
	Window6h  TimeWindow = "6h"
	Window24h TimeWindow = "24h"
	Window7d  TimeWindow = "7d"
	Window30d TimeWindow = "30d"
)

var windowDurations = map[TimeWindow]time.Duration{
	Window6h:  6 * time.Hour,
	Window24h: 24 * time.Hour,
	Window7d:  7 * 24 * time.Hour,
	Window30d: 30 * 24 * time.Hour,
}

// TimeWindows lists the supported windows from narrowest to widest.
func TimeWindows() []TimeWindow {
	return []TimeWindow{Window6h, Window24h, Window7d, Window30d}
}

// ParseTimeWindow validates a window label such as "24h".
func ParseTimeWindow(raw string) (TimeWindow, error) {
	w := TimeWindow(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := windowDurations[w]; !ok {
		return "", fmt.Errorf("unsupported time window %q (expected 6h, 24h, 7d or 30d)", raw)
	}
	return w, nil
}

// Duration returns the span covered by the window, or 0 for unknown windows.
func (w TimeWindow) Duration() time.Duration {
	return windowDurations[w]
}
