// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/paper-engine/internal/httputil"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// TelegramBaseURL is the Bot API root. Tests point it at an httptest server.
var TelegramBaseURL = "https://api.telegram.org"

// maxExcerpt caps the abstract excerpt in the message body, in runes.
const maxExcerpt = 200

// Telegram sends the paper summary as a bot direct message.
type Telegram struct {
	Token     string
	ChatID    string
	UserAgent string
	Client    *http.Client
}

func (t *Telegram) Name() string { return "telegram" }

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type botResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts MessageBody to sendMessage.
func (t *Telegram) Send(ctx context.Context, meta types.MetadataRecord, location string) error {
	text, err := MessageBody(meta, location)
	if err != nil {
		return err
	}
	body, err := json.Marshal(sendMessageRequest{ChatID: t.ChatID, Text: text, DisableWebPagePreview: true})
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(TelegramBaseURL, "/"), t.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, t.Client, req, 0)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	var br botResponse
	if err := json.Unmarshal(raw, &br); err != nil {
		return fmt.Errorf("HTTP %d: decoding response: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !br.OK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, br.Description)
	}
	return nil
}

var messageTmpl = template.Must(template.New("message").Parse(`New SSRN Paper Generated and Ready for Submission

PAPER DETAILS
Title: {{.Meta.Title}}
Short Title: {{.ShortTitle}}
Track: {{.Meta.Track}}
Date Generated: {{.Meta.Date}}
Author: {{.Meta.Author}} (ORCID: {{.Meta.ORCID}})

LINK
{{if .Location}}{{.Location}}{{else}}Not available{{end}}

ABSTRACT
{{.Excerpt}}

KEYWORDS
{{.Meta.Keywords}}

JEL CODES
{{.Meta.JELCodes}}

SUGGESTED EJOURNALS
{{.Meta.EJournals}}

NEXT STEPS
1. Review the paper
2. Submit to SSRN
3. Update the submission status
`))

// MessageBody renders the email-style summary sent to the direct-message
// channel.
func MessageBody(meta types.MetadataRecord, location string) (string, error) {
	var buf bytes.Buffer
	err := messageTmpl.Execute(&buf, struct {
		Meta       types.MetadataRecord
		ShortTitle string
		Location   string
		Excerpt    string
	}{meta, ShortTitle(meta), location, Excerpt(meta.Abstract, maxExcerpt)})
	if err != nil {
		return "", fmt.Errorf("rendering message: %w", err)
	}
	return buf.String(), nil
}

// Excerpt returns at most max runes of s, marking a cut with "...".
func Excerpt(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= max {
		return string(r)
	}
	return strings.TrimSpace(string(r[:max])) + "..."
}
