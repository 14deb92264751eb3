package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Arcadesys/doctorfeelgood-sub001/cmd"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/audio"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/config"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/dsp"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/engine"
	applog "github.com/Arcadesys/doctorfeelgood-sub001/internal/log"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/source"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/transport"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/tui"
	"github.com/Arcadesys/doctorfeelgood-sub001/pkg/build"
)

// main runs in three phases:
//
//  1. Startup (cold path): build info, config and flags, PortAudio init,
//     one-off commands.
//  2. Session (hot path): engine start, scheduler ticking, renderer.
//  3. Shutdown (cold path): signal handling, resource teardown.
func main() {
	build.Initialize()

	cfg, err := cmd.ParseArgs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	// The platform may deny audio entirely; the session still runs, visual
	// only.
	audioUp := false
	if !cfg.Audio.Disabled {
		if err := audio.Initialize(); err != nil {
			applog.Warnf("startup: %v, continuing visual-only", err)
			cfg.Audio.Disabled = true
		} else {
			audioUp = true
			defer audio.Terminate()
		}
	}

	switch cfg.Command {
	case "list":
		if !audioUp {
			applog.Fatalf("cannot list devices: audio unavailable")
		}
		if err := audio.ListDevices(); err != nil {
			applog.Fatalf("list devices: %v", err)
		}
		return
	case "analyze":
		if err := analyzeFile(cfg); err != nil {
			applog.Fatalf("analyze: %v", err)
		}
		return
	}

	if err := runSession(cfg); err != nil {
		applog.Fatalf("session: %v", err)
	}
}

// analyzeFile runs the one-shot analysis pipeline over a file and prints
// the estimate.
func analyzeFile(cfg *config.Config) error {
	src, err := source.Load(source.OriginUpload, cfg.File, "")
	if err != nil {
		return err
	}
	defer src.Close()

	analyzer := dsp.NewAnalyzer(dsp.Params{
		ThresholdFloor:    cfg.Analysis.ThresholdFloor,
		ThresholdSpan:     cfg.Analysis.ThresholdSpan,
		MinSpacingSeconds: cfg.Analysis.MinSpacingSeconds,
		WindowSeconds:     cfg.Analysis.WindowSeconds,
	}, cfg.Analysis.LowBand, cfg.Analysis.LowBandCutoffHz)

	buf := src.Buffer()
	est := analyzer.Analyze(buf.Data, buf.SampleRate, cfg.Stimulus.Sensitivity)
	fmt.Printf("%s: %.1f BPM (confidence %.0f%%)\n", cfg.File, est.BPM, est.Confidence*100)
	return nil
}

// runSession wires up the engine and hands control to the terminal
// renderer, or to a signal wait in headless mode.
func runSession(cfg *config.Config) error {
	var trans transport.Transport
	if cfg.Transport.WebSocketEnabled {
		trans = transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr)
	} else if cfg.Headless {
		trans = transport.NewLoggingTransport()
	}

	eng := engine.New(cfg, trans)
	defer eng.Close()

	if cfg.File != "" {
		if err := eng.LoadTrack(source.OriginUpload, cfg.File, ""); err != nil {
			return err
		}
	} else {
		if err := eng.LoadTrack(source.OriginSample, "", ""); err != nil {
			return err
		}
	}

	if err := eng.Start(); err != nil {
		return err
	}

	if cfg.Headless {
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		<-done
		return nil
	}

	program := tea.NewProgram(tui.NewSessionModel(eng))
	_, err := program.Run()
	return err
}
