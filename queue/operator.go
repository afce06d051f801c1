// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/jukebox-party/models"
)

var (
	ErrNothingPlaying   = errors.New("nothing is playing")
	ErrNothingCompleted = errors.New("no completed requests")
	ErrUnknownRequest   = errors.New("request not in view")
)

// Commands are the queue mutations the operator console sends.
type Commands interface {
	SetCompleted(ctx context.Context, id string, completed bool) error
	Delete(ctx context.Context, id string) error
}

// Operator runs the queue from the console. It reads positions from the
// live view and sends commands; the view catches up through the feed.
type Operator struct {
	cmds Commands
	view *View
}

func NewOperator(cmds Commands, view *View) *Operator {
	return &Operator{cmds: cmds, view: view}
}

// Complete marks the request finished.
func (o *Operator) Complete(ctx context.Context, id string) error {
	if err := o.cmds.SetCompleted(ctx, id, true); err != nil {
		return fmt.Errorf("failed to complete %s: %w", id, err)
	}
	slog.Info("Request completed", "id", id)
	return nil
}

// Restore returns a finished request to the active list. It keeps its
// original request time, so it lands back in its old position.
func (o *Operator) Restore(ctx context.Context, id string) error {
	if err := o.cmds.SetCompleted(ctx, id, false); err != nil {
		return fmt.Errorf("failed to restore %s: %w", id, err)
	}
	slog.Info("Request restored", "id", id)
	return nil
}

// Advance completes whatever is playing now.
func (o *Operator) Advance(ctx context.Context) (models.Request, error) {
	playing, ok := o.view.Current().NowPlaying()
	if !ok {
		return models.Request{}, ErrNothingPlaying
	}
	return playing, o.Complete(ctx, playing.ID)
}

// Previous restores the most recently completed request.
func (o *Operator) Previous(ctx context.Context) (models.Request, error) {
	last, ok := o.view.Current().LastCompleted()
	if !ok {
		return models.Request{}, ErrNothingCompleted
	}
	return last, o.Restore(ctx, last.ID)
}

// Remove deletes a request permanently. Nothing is sent unless confirm
// returns true; the boolean result reports whether the delete happened.
func (o *Operator) Remove(ctx context.Context, id string, confirm func(models.Request) bool) (bool, error) {
	req, ok := o.view.Find(id)
	if !ok {
		return false, ErrUnknownRequest
	}
	if confirm == nil || !confirm(req) {
		return false, nil
	}
	if err := o.cmds.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("failed to remove %s: %w", id, err)
	}
	slog.Info("Request removed", "id", id, "title", req.Title)
	return true, nil
}
