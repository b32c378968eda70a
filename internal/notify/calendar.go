// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/paper-engine/internal/httputil"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// CalendarBaseURL is the Calendar API root. Tests point it at an httptest
// server.
var CalendarBaseURL = "https://www.googleapis.com/calendar/v3"

const (
	defaultEventLength = 15 * time.Minute
	reminderMinutes    = 15
)

// Calendar inserts a review reminder event.
type Calendar struct {
	Token      string
	CalendarID string
	Location   *time.Location
	Hour       int
	Minute     int
	Duration   time.Duration
	UserAgent  string
	Client     *http.Client

	now func() time.Time
}

func (c *Calendar) Name() string { return "calendar" }

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type reminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

type eventReminders struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []reminderOverride `json:"overrides"`
}

// Event is the events.insert request body.
type Event struct {
	Summary     string         `json:"summary"`
	Description string         `json:"description"`
	Start       eventTime      `json:"start"`
	End         eventTime      `json:"end"`
	Reminders   eventReminders `json:"reminders"`
}

// NextReminder returns the next hour:minute in loc strictly after now.
func NextReminder(now time.Time, loc *time.Location, hour, minute int) time.Time {
	now = now.In(loc)
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
	if !t.After(now) {
		t = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, loc)
	}
	return t
}

// NewEvent builds the reminder event for meta starting at start.
func NewEvent(meta types.MetadataRecord, location string, start time.Time, length time.Duration) Event {
	if length <= 0 {
		length = defaultEventLength
	}
	link := location
	if link == "" {
		link = "Not available"
	}
	desc := fmt.Sprintf("Full Title: %s\n\nLink: %s\n\nKeywords: %s\n\nJEL Codes: %s\n\nStatus: Ready for SSRN submission",
		meta.Title, link, meta.Keywords, meta.JELCodes)

	zone := start.Location().String()
	return Event{
		Summary:     "SSRN Paper Ready: " + strings.ReplaceAll(ShortTitle(meta), "_", " "),
		Description: desc,
		Start:       eventTime{DateTime: start.Format(time.RFC3339), TimeZone: zone},
		End:         eventTime{DateTime: start.Add(length).Format(time.RFC3339), TimeZone: zone},
		Reminders: eventReminders{
			Overrides: []reminderOverride{{Method: "popup", Minutes: reminderMinutes}},
		},
	}
}

// Send inserts the reminder event at the next configured slot.
func (c *Calendar) Send(ctx context.Context, meta types.MetadataRecord, location string) error {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now()
	if c.now != nil {
		now = c.now()
	}
	ev := NewEvent(meta, location, NextReminder(now, loc, c.Hour, c.Minute), c.Duration)

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	id := c.CalendarID
	if id == "" {
		id = "primary"
	}
	endpoint := fmt.Sprintf("%s/calendars/%s/events", strings.TrimRight(CalendarBaseURL, "/"), url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
