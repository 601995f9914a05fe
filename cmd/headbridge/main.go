// headbridge - feeds eye/head tracker samples to a virtual joystick for
// head-tracking shaders.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/teslashibe/go-headbridge/internal/config"
	hlog "github.com/teslashibe/go-headbridge/internal/log"
	"github.com/teslashibe/go-headbridge/pkg/bridge"
	"github.com/teslashibe/go-headbridge/pkg/diag"
	"github.com/teslashibe/go-headbridge/pkg/host"
	"github.com/teslashibe/go-headbridge/pkg/mapping"
	"github.com/teslashibe/go-headbridge/pkg/tracker"
	"github.com/teslashibe/go-headbridge/pkg/vio"
	"github.com/teslashibe/go-headbridge/pkg/web"
)

// options holds parsed command line settings.
type options struct {
	Source     string
	TrackerURL string
	OSCListen  string
	Sinks      []string
	OSCTarget  string
	WebPort    string
	LogLevel   string
}

func main() {
	opts := parseFlags()
	hlog.Init(opts.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("❌ headbridge: %v", err)
	}
}

// parseFlags parses command line flags, falling back to the environment.
func parseFlags() options {
	source := flag.String("source", "ws", "Tracker source: ws, osc, sim")
	trackerURL := flag.String("tracker-url", config.TrackerURL(), "Tracker daemon websocket URL (HEADBRIDGE_TRACKER_URL)")
	oscListen := flag.String("osc-listen", config.OSCListen(), "UDP address for OSC tracker input (HEADBRIDGE_OSC_LISTEN)")
	sinks := flag.String("sink", "joystick", "Comma separated outputs: joystick, osc, memory")
	oscTarget := flag.String("osc-target", config.OSCTarget(), "host:port for OSC axis output (HEADBRIDGE_OSC_TARGET)")
	webPort := flag.String("web-port", config.WebPort(), "Dashboard port, empty to disable (HEADBRIDGE_WEB_PORT)")
	level := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	debug := flag.Bool("debug", false, "Enable debug logging (same as -log-level debug)")
	flag.Parse()

	opts := options{
		Source:     *source,
		TrackerURL: *trackerURL,
		OSCListen:  *oscListen,
		Sinks:      splitList(*sinks),
		OSCTarget:  *oscTarget,
		WebPort:    *webPort,
		LogLevel:   *level,
	}
	if *debug {
		opts.LogLevel = "debug"
	}
	return opts
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(strings.ToLower(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func run(ctx context.Context, opts options) error {
	logger := hlog.Component("main")

	out, err := openSinks(opts)
	if err != nil {
		return err
	}
	defer out.Close()

	src, err := openSource(ctx, opts)
	if err != nil {
		return err
	}
	defer src.Close()

	board := diag.NewBoard()
	watcher := diag.Multi{board, diag.NewLogWatcher(hlog.Component("diagnostics"))}

	script := bridge.New(out, watcher)
	h, err := host.New(host.DefaultConfig())
	if err != nil {
		return err
	}
	h.OnStarting(func(h *host.Host) { script.Starting(h) })

	if opts.WebPort != "" {
		srv := web.NewServer(opts.WebPort, board, h, script)
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Warn("dashboard stopped", "error", err)
			}
		}()
	}

	logger.Info("headbridge starting",
		"session", h.Session().String(),
		"source", opts.Source,
		"sinks", strings.Join(opts.Sinks, ","),
		"center", mapping.Center)

	if err := h.Run(ctx, src); err != nil {
		return err
	}

	st := script.Stats()
	logger.Info("headbridge stopped", "updates", st.Updates, "present", st.Present)
	return nil
}

func openSource(ctx context.Context, opts options) (tracker.Source, error) {
	switch opts.Source {
	case "ws":
		return tracker.DialWS(ctx, opts.TrackerURL)
	case "osc":
		return tracker.ListenOSC(opts.OSCListen, tracker.DefaultOSCAddress)
	case "sim":
		return tracker.NewSimSource(tracker.DefaultSimConfig())
	}
	return nil, fmt.Errorf("unknown source %q (want ws, osc or sim)", opts.Source)
}

func openSinks(opts options) (vio.Multi, error) {
	if len(opts.Sinks) == 0 {
		return nil, errors.New("at least one sink is required")
	}

	var out vio.Multi
	for _, name := range opts.Sinks {
		var (
			dev vio.Device
			err error
		)
		switch name {
		case "joystick":
			dev, err = vio.NewJoystick(vio.DefaultJoystickConfig())
		case "osc":
			dev, err = vio.NewOSC(opts.OSCTarget, vio.DefaultOSCPrefix)
		case "memory":
			dev = vio.NewMemory()
		default:
			err = fmt.Errorf("unknown sink %q (want joystick, osc or memory)", name)
		}
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("open sink %s: %w", name, err)
		}
		out = append(out, dev)
	}
	return out, nil
}
