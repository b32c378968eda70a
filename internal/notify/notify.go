// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify announces a finished paper on every configured channel:
// a Telegram direct message carrying the full paper summary and a Google
// Calendar reminder at the next review slot. Channels are independent; one
// failing never stops the others.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/paper-engine/internal/naming"
	"github.com/pdiddy/paper-engine/internal/pipeline"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// Channel delivers one notification.
type Channel interface {
	Name() string
	Send(ctx context.Context, meta types.MetadataRecord, location string) error
}

// Notifier implements pipeline.Notifier over a fixed channel list.
type Notifier struct {
	Channels []Channel

	// Progress receives one line per channel outcome. Nil discards.
	Progress io.Writer
}

var _ pipeline.Notifier = (*Notifier)(nil)

// New builds a notifier with every channel whose credentials are present
// in cfg. A nil client gets one with cfg.Timeout.
func New(cfg types.NotifyConfig, client *http.Client, progress io.Writer) (*Notifier, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	n := &Notifier{Progress: progress}

	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		n.Channels = append(n.Channels, &Telegram{
			Token:     cfg.Telegram.BotToken,
			ChatID:    cfg.Telegram.ChatID,
			UserAgent: cfg.UserAgent,
			Client:    client,
		})
	}

	if cfg.Calendar.AccessToken != "" {
		loc, err := time.LoadLocation(cfg.Calendar.Timezone)
		if err != nil {
			return nil, fmt.Errorf("loading calendar timezone: %w", err)
		}
		n.Channels = append(n.Channels, &Calendar{
			Token:      cfg.Calendar.AccessToken,
			CalendarID: cfg.Calendar.CalendarID,
			Location:   loc,
			Hour:       cfg.Calendar.Hour,
			Minute:     cfg.Calendar.Minute,
			Duration:   cfg.Calendar.Duration,
			UserAgent:  cfg.UserAgent,
			Client:     client,
		})
	}
	return n, nil
}

// Notify sends on every channel and reports each outcome. It returns an
// error only when no channel delivered.
func (n *Notifier) Notify(ctx context.Context, meta types.MetadataRecord, location string) (pipeline.NotifyReceipt, error) {
	var receipt pipeline.NotifyReceipt
	if len(n.Channels) == 0 {
		return receipt, errors.New("no notification channels configured")
	}

	var errs []error
	for _, ch := range n.Channels {
		res := pipeline.ChannelResult{Channel: ch.Name()}
		if err := ch.Send(ctx, meta, location); err != nil {
			res.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			n.progress("notify %s: failed: %v", ch.Name(), err)
		} else {
			res.Delivered = true
			n.progress("notify %s: sent", ch.Name())
		}
		receipt.Channels = append(receipt.Channels, res)
	}

	if len(errs) == len(n.Channels) {
		return receipt, errors.Join(errs...)
	}
	return receipt, nil
}

func (n *Notifier) progress(format string, args ...any) {
	if n.Progress == nil {
		return
	}
	fmt.Fprintf(n.Progress, format+"\n", args...)
}

// ShortTitle is the filename with the brand prefix and extension removed.
func ShortTitle(meta types.MetadataRecord) string {
	return strings.TrimPrefix(strings.TrimSuffix(meta.Filename, ".pdf"), naming.Prefix)
}
