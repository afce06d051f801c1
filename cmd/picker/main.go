// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command picker is the song picker terminal. The same program runs on
// guest phones and on kiosks; the credentials stored on the device decide
// which.
//
//	picker list [-category Baroque] [-search bach]
//	picker request <songId> [name] [amount]
//	picker return <url>             # after the checkout redirect
//	picker kiosk <secret>           # authorize this device as a kiosk
//	picker login <password>         # operator login, also enables kiosk mode
//	picker mode
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danielhkuo/jukebox-party/catalog"
	"github.com/danielhkuo/jukebox-party/cliparse"
	"github.com/danielhkuo/jukebox-party/client"
	"github.com/danielhkuo/jukebox-party/credits"
	"github.com/danielhkuo/jukebox-party/device"
	"github.com/danielhkuo/jukebox-party/notice"
	"github.com/danielhkuo/jukebox-party/picker"
	"github.com/danielhkuo/jukebox-party/reconcile"
)

var errUsage = errors.New("usage: picker [flags] list|request|return|kiosk|login|mode ...")

func main() {
	cfg, err := cliparse.ParseTerminalFlags("picker", os.Args[1:])
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
	err = run(ctx, cfg, store, os.Stdout)
	stop()
	store.Close()
	if err != nil {
		slog.Error("picker failed", "error", err)
		os.Exit(1)
	}
}

// terminal bundles what one picker invocation needs.
type terminal struct {
	api      *client.Client
	resolver *device.Resolver
	notices  *notice.Board
	out      io.Writer
}

func run(ctx context.Context, cfg cliparse.TerminalConfig, store device.Store, out io.Writer) error {
	if len(cfg.Args) == 0 {
		return errUsage
	}

	api, err := client.New(cfg.ServerURL)
	if err != nil {
		return err
	}
	policy, err := device.ParsePolicy(cfg.KioskPolicy)
	if err != nil {
		return err
	}

	t := &terminal{
		api:      api,
		resolver: &device.Resolver{Store: store, Policy: policy, KioskSecret: cfg.KioskSecret},
		notices:  notice.NewBoard(notice.DefaultTTL),
		out:      out,
	}
	t.notices.OnChange(func(n *notice.Notice) {
		if n != nil {
			fmt.Fprintf(t.out, "[%s] %s\n", n.Kind, n.Text)
		}
	})

	cmd, args := cfg.Args[0], cfg.Args[1:]
	switch cmd {
	case "list":
		return t.list(ctx, args)
	case "request":
		return t.request(ctx, args)
	case "return":
		return t.paymentReturn(ctx, args)
	case "kiosk":
		if len(args) != 1 {
			return errUsage
		}
		if err := t.resolver.AuthorizeKiosk(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(t.out, "This device is now a kiosk.")
		return nil
	case "login":
		if len(args) != 1 {
			return errUsage
		}
		if err := t.resolver.LoginOperator(ctx, t.api, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(t.out, "Operator login saved on this device.")
		return nil
	case "mode":
		mode, err := t.resolver.Resolve(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(t.out, "operator=%v kiosk=%v\n", mode.Operator, mode.Kiosk)
		return nil
	}
	return errUsage
}

func (t *terminal) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	category := fs.String("category", catalog.AllCategories, "Category filter")
	search := fs.String("search", "", "Title or artist search")
	if err := fs.Parse(args); err != nil {
		return err
	}

	view := catalog.NewView()
	if err := view.Load(ctx, t.api); err != nil {
		return err
	}
	view.SetCategory(*category)
	view.SetSearch(*search)

	fmt.Fprintf(t.out, "Categories: %s\n", strings.Join(view.Categories(), ", "))
	for _, s := range view.Visible() {
		fmt.Fprintf(t.out, "%-40s %s - %s\n", s.ID, s.Title, s.Artist)
	}
	return nil
}

func (t *terminal) reconciler() *reconcile.Reconciler {
	return reconcile.New(t.resolver.Store, t.api, t.api, t.notices)
}

func (t *terminal) request(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return errUsage
	}
	songID := args[0]
	var name, amount string
	if len(args) > 1 {
		name = args[1]
	}
	if len(args) > 2 {
		amount = args[2]
	}

	mode, err := t.resolver.Resolve(ctx)
	if err != nil {
		return err
	}

	var ledger *credits.Ledger
	if mode.Kiosk {
		kioskAPI := t.api.WithKioskSecret(mode.KioskToken)
		count, err := kioskAPI.Credits(ctx)
		if err != nil {
			return err
		}
		ledger = credits.NewLedger(kioskAPI)
		ledger.Observe(count)
	}

	p := picker.New(mode, ledger, t.api, t.reconciler(), t.notices)
	res, err := p.Submit(ctx, songID, name, amount)
	if err != nil {
		return err
	}
	if res.CheckoutURL != "" {
		fmt.Fprintf(t.out, "Open to pay: %s\n", res.CheckoutURL)
	}
	return nil
}

func (t *terminal) paymentReturn(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	location, err := url.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid return URL: %w", err)
	}

	cleaned, err := t.reconciler().Return(ctx, location)
	if cleaned != nil {
		fmt.Fprintf(t.out, "Location: %s\n", cleaned)
	}
	return err
}
