// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command console is the operator console. The device must have an
// operator login (see picker login); API calls use ADMIN_PASSWORD.
//
//	console show
//	console next | previous
//	console complete <id> | restore <id> | remove <id>
//	console credits <+n|-n>
//	console watch
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/danielhkuo/jukebox-party/cliparse"
	"github.com/danielhkuo/jukebox-party/client"
	"github.com/danielhkuo/jukebox-party/credits"
	"github.com/danielhkuo/jukebox-party/device"
	"github.com/danielhkuo/jukebox-party/models"
	"github.com/danielhkuo/jukebox-party/queue"
)

var (
	errUsage       = errors.New("usage: console [flags] show|next|previous|complete|restore|remove|credits|watch ...")
	errNotOperator = errors.New("this device has no operator login")
)

func main() {
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	cfg, err := cliparse.ParseTerminalFlags("console", os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(2)
	}

	store, err := device.OpenSQLiteStore(cfg.DeviceDB)
	if err != nil {
		slog.Error("Failed to open device store", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, store, os.Getenv("ADMIN_PASSWORD"), os.Stdin, os.Stdout)
	stop()
	store.Close()
	if err != nil {
		slog.Error("console failed", "error", err)
		os.Exit(1)
	}
}

type console struct {
	api    *client.Client
	view   *queue.View
	op     *queue.Operator
	ledger *credits.Ledger
	in     *bufio.Reader
	out    io.Writer
}

func run(ctx context.Context, cfg cliparse.TerminalConfig, store device.Store, password string, in io.Reader, out io.Writer) error {
	if len(cfg.Args) == 0 {
		return errUsage
	}

	resolver := &device.Resolver{Store: store, KioskSecret: cfg.KioskSecret}
	mode, err := resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	if !mode.Operator {
		return errNotOperator
	}

	api, err := client.New(cfg.ServerURL)
	if err != nil {
		return err
	}
	admin := api.WithAdminPassword(password)

	c := &console{
		api:    admin,
		view:   queue.NewView(),
		ledger: credits.NewLedger(admin),
		in:     bufio.NewReader(in),
		out:    out,
	}
	c.op = queue.NewOperator(admin, c.view)

	cmd, args := cfg.Args[0], cfg.Args[1:]
	if cmd == "watch" {
		return c.watch(ctx)
	}
	if err := c.refresh(ctx); err != nil {
		return err
	}

	switch {
	case cmd == "show" && len(args) == 0:
		c.show(c.view.Current())
		return nil
	case cmd == "next" && len(args) == 0:
		r, err := c.op.Advance(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Finished %s\n", r.Title)
	case cmd == "previous" && len(args) == 0:
		r, err := c.op.Previous(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Back to %s\n", r.Title)
	case cmd == "complete" && len(args) == 1:
		return c.op.Complete(ctx, args[0])
	case cmd == "restore" && len(args) == 1:
		return c.op.Restore(ctx, args[0])
	case cmd == "remove" && len(args) == 1:
		removed, err := c.op.Remove(ctx, args[0], c.confirm)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintln(c.out, "Kept.")
		}
	case cmd == "credits" && len(args) == 1:
		delta, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid credit change %q: %w", args[0], err)
		}
		count, err := c.ledger.Adjust(ctx, delta)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Credits: %d\n", count)
	default:
		return errUsage
	}
	return nil
}

// refresh loads the queue and the credit pool once.
func (c *console) refresh(ctx context.Context) error {
	requests, err := c.api.Queue(ctx)
	if err != nil {
		return err
	}
	c.view.Apply(requests)

	count, err := c.api.Credits(ctx)
	if err != nil {
		return err
	}
	c.ledger.Observe(count)
	return nil
}

func (c *console) confirm(r models.Request) bool {
	fmt.Fprintf(c.out, "Remove %q requested by %q? This cannot be undone. [y/N] ", r.Title, r.RequestedBy)
	answer, _ := c.in.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (c *console) show(p queue.Projection) {
	fmt.Fprintf(c.out, "Credits: %d\n", c.ledger.Current())
	if now, ok := p.NowPlaying(); ok {
		fmt.Fprintf(c.out, "Now:  %s  %s - %s\n", now.ID, now.Title, now.Artist)
	} else {
		fmt.Fprintln(c.out, "Now:  (queue empty)")
	}
	for _, r := range p.UpNext() {
		fmt.Fprintf(c.out, "Next: %s  %s - %s  [%s]\n", r.ID, r.Title, r.Artist, r.Source)
	}
	for _, r := range p.Completed {
		fmt.Fprintf(c.out, "Done: %s  %s - %s\n", r.ID, r.Title, r.Artist)
	}
}

// watch follows both feeds until ctx is cancelled.
func (c *console) watch(ctx context.Context) error {
	c.view.OnChange(func(p queue.Projection) { c.show(p) })

	queueSub, err := c.api.Subscribe(ctx, models.TopicQueue, func(s models.Snapshot) {
		c.view.Apply(s.Requests)
	})
	if err != nil {
		return err
	}
	defer queueSub.Close()

	creditSub, err := c.api.Subscribe(ctx, models.TopicCredits, func(s models.Snapshot) {
		c.ledger.Observe(s.Credits)
		fmt.Fprintf(c.out, "Credits: %d\n", s.Credits)
	})
	if err != nil {
		return err
	}
	defer creditSub.Close()

	select {
	case <-ctx.Done():
		return nil
	case <-queueSub.Done():
		return queueSub.Err()
	case <-creditSub.Done():
		return creditSub.Err()
	}
}
