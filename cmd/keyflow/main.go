package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/atotto/clipboard"

	"github.com/nullkey/keyflow/internal/codec"
	"github.com/nullkey/keyflow/internal/config"
	"github.com/nullkey/keyflow/internal/engine"
	"github.com/nullkey/keyflow/internal/event"
	"github.com/nullkey/keyflow/internal/hidreport"
	"github.com/nullkey/keyflow/internal/keycode"
	"github.com/nullkey/keyflow/internal/matrix"
	"github.com/nullkey/keyflow/internal/tui"
)

// buildLayout converts a config's flat uint16 keymap into an
// engine.Layout, decoding every wire code through internal/codec. A slot
// whose code has no mapping is left NoOp rather than aborting startup.
func buildLayout(cfg *config.Config) *engine.Layout {
	layers := engine.NewLayers(cfg.Engine.Layers, cfg.Matrix.Rows, cfg.Matrix.Cols)
	for l := range layers {
		for r := range layers[l] {
			for c := range layers[l][r] {
				if l >= len(cfg.Keymap) || r >= len(cfg.Keymap[l]) || c >= len(cfg.Keymap[l][r]) {
					continue
				}
				code := cfg.Keymap[l][r][c]
				if a, ok := codec.Decode(code); ok {
					layers[l][r][c] = a
				}
			}
		}
	}
	lay := engine.New(layers)
	lay.SetDefaultLayer(cfg.Engine.DefaultLayer)
	return lay
}

func run() {
	debug := flag.Bool("debug", false, "enable debug logging (to stderr during startup, then to the dashboard's debug panel)")
	copyOut := flag.Bool("copy", false, "on exit, reconstruct typed text from the session and copy it to the clipboard")
	flag.Parse()

	var dbg *log.Logger
	if *debug {
		dbg = log.New(os.Stderr, "[DEBUG] ", log.Ltime|log.Lmicroseconds)
	} else {
		dbg = log.New(io.Discard, "", 0)
	}

	cfgPath := config.DefaultPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lay := buildLayout(cfg)

	scanner, err := createScanner(cfg, dbg)
	if err != nil {
		log.Fatalf("create matrix scanner: %v", err)
	}

	model := tui.NewModel(cfg, lay, dbg, *debug)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if *debug {
		dbg.SetOutput(tui.NewLogWriter(p))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan event.Event, 64)

	go func() {
		err := scanner.Start(ctx, func(row, col uint8, press bool) {
			if press {
				events <- event.NewPress(row, col)
			} else {
				events <- event.NewRelease(row, col)
			}
		})
		if err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "matrix scanner error: %v\n", err)
		}
	}()

	var snapshots [][]keycode.Code

	go func() {
		tickInterval := time.Duration(cfg.Engine.TickIntervalMs) * time.Millisecond
		if tickInterval <= 0 {
			tickInterval = time.Millisecond
		}
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case e := <-events:
				lay.Event(e)
			case <-ticker.C:
				lay.Tick()
				if *copyOut {
					snapshots = append(snapshots, lay.Keycodes())
				}
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		log.Fatalf("dashboard error: %v", err)
	}

	cancel()
	scanner.Stop()

	if *copyOut {
		text := hidreport.Decode(snapshots)
		if text == "" {
			return
		}
		if err := clipboard.WriteAll(text); err != nil {
			fmt.Fprintf(os.Stderr, "clipboard: %v\n", err)
			return
		}
		dbg.Printf("copied %d characters to clipboard", len(text))
	}
}
