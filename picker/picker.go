// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package picker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/jukebox-party/credits"
	"github.com/danielhkuo/jukebox-party/device"
	"github.com/danielhkuo/jukebox-party/models"
	"github.com/danielhkuo/jukebox-party/namecheck"
	"github.com/danielhkuo/jukebox-party/notice"
	"github.com/danielhkuo/jukebox-party/reconcile"
)

// Notice texts
const (
	MsgNoCredits     = "No credits remaining! Please see the attendant."
	MsgKioskFailed   = "Request failed. Please see the attendant."
	MsgKioskAccepted = "Request sent!"
)

// KioskSubmitter sends a credit-paid request using the terminal's kiosk
// token.
type KioskSubmitter interface {
	SubmitKiosk(ctx context.Context, kioskSecret string, req models.SubmitRequest) (models.Request, error)
}

// Result says what happened to a submission. Guests get a CheckoutURL to
// visit; kiosks get the queued Request.
type Result struct {
	Request     *models.Request
	CheckoutURL string
}

// Picker submits song requests in the mode the terminal resolved at
// startup.
type Picker struct {
	mode       device.Mode
	ledger     *credits.Ledger
	kiosk      KioskSubmitter
	reconciler *reconcile.Reconciler
	notices    reconcile.Notifier
}

func New(mode device.Mode, ledger *credits.Ledger, kiosk KioskSubmitter, reconciler *reconcile.Reconciler, notices reconcile.Notifier) *Picker {
	return &Picker{
		mode:       mode,
		ledger:     ledger,
		kiosk:      kiosk,
		reconciler: reconciler,
		notices:    notices,
	}
}

func (p *Picker) Mode() device.Mode {
	return p.mode
}

// Submit requests a song. amountInput is only read in guest mode.
func (p *Picker) Submit(ctx context.Context, songID, name, amountInput string) (Result, error) {
	if p.mode.Kiosk {
		return p.submitKiosk(ctx, songID, name)
	}

	url, err := p.reconciler.Stage(ctx, songID, name, reconcile.ResolveAmount(amountInput))
	if err != nil {
		return Result{}, err
	}
	return Result{CheckoutURL: url}, nil
}

// submitKiosk spends a credit before submitting. A failed submission does
// not refund it; the attendant tops the pool up by hand.
func (p *Picker) submitKiosk(ctx context.Context, songID, name string) (Result, error) {
	clean := namecheck.Sanitize(name)

	if err := p.ledger.TrySpend(ctx); err != nil {
		if errors.Is(err, credits.ErrNoCredits) {
			p.notices.Show(notice.Error, MsgNoCredits)
		} else {
			p.notices.Show(notice.Error, MsgKioskFailed)
		}
		return Result{}, err
	}

	req, err := p.kiosk.SubmitKiosk(ctx, p.mode.KioskToken, models.SubmitRequest{
		SongID:   songID,
		UserName: clean,
	})
	if err != nil {
		slog.Error("Kiosk submission failed", "song_id", songID, "error", err)
		p.notices.Show(notice.Error, MsgKioskFailed)
		return Result{}, fmt.Errorf("failed to submit request: %w", err)
	}

	p.notices.Show(notice.Success, MsgKioskAccepted)
	return Result{Request: &req}, nil
}
