// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/jukebox-party/device"
	"github.com/danielhkuo/jukebox-party/models"
	"github.com/danielhkuo/jukebox-party/namecheck"
	"github.com/danielhkuo/jukebox-party/notice"
)

// MinimumDollars is the smallest contribution a guest can make.
const MinimumDollars = 5

// Query parameters set on the checkout return URL
const (
	ParamPayment   = "payment"
	ParamSessionID = "session_id"
)

// Notice texts
const (
	MsgCheckoutFailed = "Could not start checkout. Please try again."
	MsgRequestQueued  = "Thank you! Your request is in the queue."
	MsgShowStaff      = "Payment received but the request did not go through. Please show this screen to staff."
	MsgCancelled      = "Payment cancelled. Your song was not requested."
)

var ErrNoCheckoutURL = errors.New("checkout returned no URL")

type State int

const (
	Idle State = iota
	Staging
	ReturnedSuccess
	ReturnedCancelled
)

func (s State) String() string {
	switch s {
	case Staging:
		return "staging"
	case ReturnedSuccess:
		return "returned-success"
	case ReturnedCancelled:
		return "returned-cancelled"
	}
	return "idle"
}

// SessionCreator opens a hosted checkout and returns where to send the guest.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, req models.CheckoutSessionRequest) (string, error)
}

// Submitter queues a request after payment.
type Submitter interface {
	SubmitEmergency(ctx context.Context, req models.SubmitRequest) (models.Request, error)
}

// Notifier shows a transient message. *notice.Board satisfies it.
type Notifier interface {
	Show(kind notice.Kind, text string)
}

// Reconciler carries a guest request across the checkout redirect. The
// request is staged in the device store before leaving and submitted when
// the guest comes back with payment=success.
type Reconciler struct {
	mu       sync.Mutex
	state    State
	store    device.Store
	sessions SessionCreator
	submit   Submitter
	notices  Notifier
	now      func() time.Time
}

func New(store device.Store, sessions SessionCreator, submit Submitter, notices Notifier) *Reconciler {
	return &Reconciler{
		store:    store,
		sessions: sessions,
		submit:   submit,
		notices:  notices,
		now:      time.Now,
	}
}

func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// ResolveAmount parses the amount field. Blank, non-numeric and too-small
// input all become the minimum.
func ResolveAmount(input string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < MinimumDollars {
		return MinimumDollars
	}
	return v
}

// Cents converts a dollar amount to minor units.
func Cents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

// Stage saves the pending request and opens a checkout session for it.
// The returned URL is where the guest should be sent next.
func (r *Reconciler) Stage(ctx context.Context, songID, name string, amount float64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = Staging
	defer func() { r.state = Idle }()

	pending := models.PendingRequest{
		SongID:   songID,
		UserName: namecheck.Sanitize(name),
		StagedAt: r.now().UTC(),
	}
	raw, err := json.Marshal(pending)
	if err != nil {
		return "", fmt.Errorf("failed to encode pending request: %w", err)
	}
	if err := r.store.Set(ctx, device.KeyPendingRequest, string(raw)); err != nil {
		r.notices.Show(notice.Error, MsgCheckoutFailed)
		return "", fmt.Errorf("failed to stage request: %w", err)
	}

	checkoutURL, err := r.sessions.CreateCheckoutSession(ctx, models.CheckoutSessionRequest{
		SongID:   pending.SongID,
		UserName: pending.UserName,
		Amount:   Cents(amount),
	})
	if err == nil && checkoutURL == "" {
		err = ErrNoCheckoutURL
	}
	if err != nil {
		slog.Error("Checkout session failed", "song_id", songID, "error", err)
		r.notices.Show(notice.Error, MsgCheckoutFailed)
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	slog.Info("Request staged for checkout", "song_id", songID, "amount_cents", Cents(amount))
	return checkoutURL, nil
}

// Return handles the location the guest lands on after checkout. It
// returns the location with the payment parameters removed, which the
// caller should use to replace the current one rather than push a new
// history entry. A location without a payment outcome comes back as is.
func (r *Reconciler) Return(ctx context.Context, location *url.URL) (*url.URL, error) {
	outcome := location.Query().Get(ParamPayment)
	if outcome != models.PaymentSuccess && outcome != models.PaymentCancelled {
		return location, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() { r.state = Idle }()

	var err error
	if outcome == models.PaymentSuccess {
		r.state = ReturnedSuccess
		err = r.settle(ctx, location.Query().Get(ParamSessionID))
	} else {
		r.state = ReturnedCancelled
		slog.Info("Checkout cancelled")
		r.notices.Show(notice.Error, MsgCancelled)
	}

	return stripPaymentParams(location), err
}

// settle submits the staged request once and clears it. A failed
// submission keeps the record for staff to recover by hand.
func (r *Reconciler) settle(ctx context.Context, sessionID string) error {
	pending, ok, err := r.pending(ctx)
	if err != nil {
		r.notices.Show(notice.Error, MsgShowStaff)
		return err
	}
	if !ok {
		// Already settled, e.g. the page was reloaded
		slog.Info("Payment return with nothing staged")
		return nil
	}

	_, err = r.submit.SubmitEmergency(ctx, models.SubmitRequest{
		SongID:     pending.SongID,
		UserName:   pending.UserName,
		PaymentRef: sessionID,
	})
	if err != nil {
		slog.Error("Post-payment submission failed", "song_id", pending.SongID, "error", err)
		r.notices.Show(notice.Error, MsgShowStaff)
		return fmt.Errorf("failed to submit paid request: %w", err)
	}

	if err := r.store.Delete(ctx, device.KeyPendingRequest); err != nil {
		slog.Error("Failed to clear staged request", "error", err)
	}
	slog.Info("Paid request submitted", "song_id", pending.SongID)
	r.notices.Show(notice.Success, MsgRequestQueued)
	return nil
}

// Pending returns the staged request, if any.
func (r *Reconciler) Pending(ctx context.Context) (models.PendingRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending(ctx)
}

func (r *Reconciler) pending(ctx context.Context) (models.PendingRequest, bool, error) {
	raw, err := r.store.Get(ctx, device.KeyPendingRequest)
	if errors.Is(err, device.ErrNotFound) {
		return models.PendingRequest{}, false, nil
	}
	if err != nil {
		return models.PendingRequest{}, false, fmt.Errorf("failed to read staged request: %w", err)
	}

	var p models.PendingRequest
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return models.PendingRequest{}, false, fmt.Errorf("failed to decode staged request: %w", err)
	}
	return p, true, nil
}

func stripPaymentParams(location *url.URL) *url.URL {
	cleaned := *location
	q := cleaned.Query()
	q.Del(ParamPayment)
	q.Del(ParamSessionID)
	cleaned.RawQuery = q.Encode()
	return &cleaned
}
