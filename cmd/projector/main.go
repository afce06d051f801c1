// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command projector is the stage display. It follows the live queue and
// redraws now playing plus the next three requests on every change.
//
//	go run ./cmd/projector -server http://localhost:3318
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danielhkuo/jukebox-party/cliparse"
	"github.com/danielhkuo/jukebox-party/client"
	"github.com/danielhkuo/jukebox-party/models"
	"github.com/danielhkuo/jukebox-party/queue"
)

// upNextShown is how many upcoming requests fit under now playing.
const upNextShown = 3

const reconnectDelay = 3 * time.Second

func main() {
	cfg, err := cliparse.ParseTerminalFlags("projector", os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	api, err := client.New(cfg.ServerURL)
	if err != nil {
		slog.Error("Bad server URL", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	view := queue.NewView()
	view.OnChange(func(p queue.Projection) { render(os.Stdout, p) })

	for ctx.Err() == nil {
		sub, err := api.Subscribe(ctx, models.TopicQueue, func(s models.Snapshot) {
			view.Apply(s.Requests)
		})
		if err != nil {
			slog.Warn("Queue feed unavailable", "error", err)
		} else {
			select {
			case <-ctx.Done():
			case <-sub.Done():
			}
			sub.Close()
		}

		select {
		case <-ctx.Done():
		case <-time.After(reconnectDelay):
		}
	}
}

func render(w io.Writer, p queue.Projection) {
	var b strings.Builder
	b.WriteString("\033[H\033[2J")

	now, ok := p.NowPlaying()
	b.WriteString("NOW PLAYING\n")
	if ok {
		fmt.Fprintf(&b, "  %s\n", describe(now))
	} else {
		b.WriteString("  Waiting for requests...\n")
	}

	next := p.UpNext()
	if len(next) > upNextShown {
		next = next[:upNextShown]
	}
	if len(next) > 0 {
		b.WriteString("\nUP NEXT\n")
		for i, r := range next {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, describe(r))
		}
	}

	io.WriteString(w, b.String())
}

func describe(r models.Request) string {
	line := r.Title + " - " + r.Artist
	if r.RequestedBy != "" {
		line += " (for " + r.RequestedBy + ")"
	}
	return line
}
