// Package config provides environment-derived defaults for headbridge commands.
package config

import (
	"os"
	"strings"
)

// Default bridge endpoints.
const (
	DefaultTrackerURL = "ws://127.0.0.1:8787/tracker"
	DefaultOSCListen  = "127.0.0.1:9000"
	DefaultOSCTarget  = "127.0.0.1:9001"
	DefaultWebPort    = "8090"
)

// env returns the trimmed value of key, or def when it is unset or blank.
func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// TrackerURL returns the tracker daemon websocket URL from HEADBRIDGE_TRACKER_URL.
func TrackerURL() string {
	return env("HEADBRIDGE_TRACKER_URL", DefaultTrackerURL)
}

// OSCListen returns the UDP address the OSC tracker source binds, from HEADBRIDGE_OSC_LISTEN.
func OSCListen() string {
	return env("HEADBRIDGE_OSC_LISTEN", DefaultOSCListen)
}

// OSCTarget returns the host:port the OSC output sends to, from HEADBRIDGE_OSC_TARGET.
func OSCTarget() string {
	return env("HEADBRIDGE_OSC_TARGET", DefaultOSCTarget)
}

// WebPort returns the dashboard port from HEADBRIDGE_WEB_PORT.
// "off" disables the dashboard and yields an empty string.
func WebPort() string {
	p := env("HEADBRIDGE_WEB_PORT", DefaultWebPort)
	if strings.EqualFold(p, "off") {
		return ""
	}
	return p
}

// Production reports whether GO_ENV selects production behaviour (JSON logs).
func Production() bool {
	return os.Getenv("GO_ENV") == "production"
}
