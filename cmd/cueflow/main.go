// Command cueflow replays a fragment event log through the timeline
// engine and prints the resulting deduplicated cues. Each line of the
// input is one JSON event: a main-fragment load, a caption sample, a
// subtitle fragment, a reference-timestamp discovery, or a detach.
package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/zsiec/cueflow/cea608"
	"github.com/zsiec/cueflow/config"
	"github.com/zsiec/cueflow/media"
	"github.com/zsiec/cueflow/stats"
	"github.com/zsiec/cueflow/timeline"
	"github.com/zsiec/cueflow/track"
	"github.com/zsiec/cueflow/vtt"
)

var version = "dev"

type event struct {
	Type          string  `json:"type"`
	Sequence      int64   `json:"sequence"`
	Discontinuity int64   `json:"cc"`
	Start         float64 `json:"start"`
	Duration      float64 `json:"duration"`
	PTS           float64 `json:"pts"`
	Timestamp     float64 `json:"timestamp"`
	Data          string  `json:"data"`
	Payload       string  `json:"payload"`
	File          string  `json:"file"`
}

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config file")
	eventsPath := pflag.StringP("events", "e", "-", "event log path, - for stdin")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Level == "debug" || os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("cueflow starting", "version", version, "events", *eventsPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	input, err := openEvents(*eventsPath)
	if err != nil {
		slog.Error("failed to open event log", "error", err)
		os.Exit(1)
	}
	defer input.Close()

	decoder := cea608.NewCCXDecoder()
	sink := track.NewMemorySink()
	ctl := timeline.New(cfg.Timeline(), decoder, vtt.NewParser(nil), sink, nil)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		ctl.SetStats(stats.NewRecorder(reg))

		metricsSrv := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		g.Go(func() error {
			slog.Info("metrics server listening", "addr", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		for {
			select {
			case ev, ok := <-ctl.Events():
				if !ok {
					return nil
				}
				if !ev.Success {
					slog.Warn("subtitle fragment failed", "sequence", ev.Fragment.Sequence)
				}
			case <-ctx.Done():
				return nil
			}
		}
	})

	if err := replay(ctx, input, ctl, decoder); err != nil {
		slog.Error("replay failed", "error", err)
		os.Exit(1)
	}
	printCues(sink)

	cancel()
	if err := g.Wait(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func openEvents(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// replay drives the controller from the event log. The loop is the
// single event goroutine the controller requires.
func replay(ctx context.Context, input io.Reader, ctl *timeline.Controller, decoder *cea608.CCXDecoder) error {
	var lastPTS float64

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev event
		if err := json.Unmarshal(line, &ev); err != nil {
			slog.Warn("skipping bad event line", "error", err)
			continue
		}

		switch ev.Type {
		case "main":
			ctl.OnMainFragment(ev.Sequence)
		case "caption":
			data, err := base64.StdEncoding.DecodeString(ev.Data)
			if err != nil {
				slog.Warn("skipping caption event with bad data", "error", err)
				continue
			}
			ctl.OnCaptionSample(media.CaptionSample{PTS: ev.PTS, Data: data})
			lastPTS = ev.PTS
		case "subtitle":
			payload, err := subtitlePayload(ev)
			if err != nil {
				slog.Warn("skipping subtitle event", "error", err)
				continue
			}
			ctl.OnSubtitleFragment(media.FragmentInfo{
				Sequence:      ev.Sequence,
				Discontinuity: ev.Discontinuity,
				Start:         ev.Start,
				Duration:      ev.Duration,
				URL:           ev.File,
			}, payload)
		case "ref":
			ctl.OnReferenceTimestamp(ev.Timestamp)
		case "detach":
			ctl.Detach()
		default:
			slog.Warn("unknown event type", "type", ev.Type)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading events: %w", err)
	}

	// Close out any caption still on screen at end of log.
	for _, cue := range decoder.Flush(lastPTS) {
		ctl.DispatchCaption(cue)
	}
	return nil
}

func subtitlePayload(ev event) ([]byte, error) {
	if ev.File != "" {
		return os.ReadFile(ev.File)
	}
	return []byte(ev.Payload), nil
}

func printCues(sink *track.MemorySink) {
	for _, info := range sink.Tracks() {
		fmt.Printf("# %s %q lang=%q\n", info.Kind, info.Label, info.Language)
		for _, cue := range sink.Cues(info.Handle) {
			fmt.Printf("%9.3f --> %9.3f  %s\n", cue.StartTime, cue.EndTime, cue.Text)
		}
	}
}
