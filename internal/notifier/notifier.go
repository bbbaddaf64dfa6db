// Package notifier posts registry payout summaries to a Discord webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	defaultTimeout = 10 * time.Second

	embedColor = 0xC27C0E // dark gold, matches the loot theme
)

// Line is one priced line of the payout summary.
type Line struct {
	Name      string
	Quantity  int
	UnitPrice int64
	Total     int64
}

// Payload is everything the webhook message needs.
type Payload struct {
	MemberName string
	Activity   string
	AuthorName string
	Lines      []Line
	TotalValue int64
	Timestamp  time.Time
}

// Result captures the webhook response. OK means a 2xx status.
type Result struct {
	OK         bool
	StatusCode int
	Body       string
}

// Notifier sends a payout summary somewhere. The production implementation
// is the Discord webhook client; tests swap in fakes.
type Notifier interface {
	Notify(ctx context.Context, payload Payload) (Result, error)
}

// WebhookClient posts Discord webhook messages over plain HTTP. The
// webhook URL already carries its credentials, so no auth header is set.
type WebhookClient struct {
	URL    string
	Client *http.Client
}

// NewWebhookClient creates a webhook client. A zero timeout falls back to
// the 10 second default.
func NewWebhookClient(url string, timeout time.Duration) *WebhookClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &WebhookClient{
		URL: url,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Notify posts the payout summary as a single embed. An unreachable
// webhook returns an error; a non-2xx response returns Result.OK=false
// with the status and body for the caller to record.
func (c *WebhookClient) Notify(ctx context.Context, payload Payload) (Result, error) {
	if c.URL == "" {
		return Result{}, fmt.Errorf("webhook URL not configured")
	}

	params := buildWebhookParams(payload)
	body, err := json.Marshal(params)
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal webhook params: %w", err)
	}

	// wait=true makes Discord return the created message instead of 204,
	// which gives us a response body worth storing on the registry.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+"?wait=true", bytes.NewBuffer(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return Result{}, fmt.Errorf("failed to read webhook response: %w", err)
	}

	return Result{
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}, nil
}

// buildWebhookParams renders the payout summary into a discordgo embed.
func buildWebhookParams(payload Payload) *discordgo.WebhookParams {
	var sb strings.Builder
	for _, line := range payload.Lines {
		fmt.Fprintf(&sb, "%d× %s — $%d c/u → $%d\n", line.Quantity, line.Name, line.UnitPrice, line.Total)
	}
	if sb.Len() == 0 {
		sb.WriteString("(no payable lines)")
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Loot registered: %s", payload.Activity),
		Description: sb.String(),
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Member", Value: payload.MemberName, Inline: true},
			{Name: "Total", Value: fmt.Sprintf("$%d", payload.TotalValue), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Registered by %s", payload.AuthorName),
		},
		Timestamp: payload.Timestamp.UTC().Format(time.RFC3339),
	}

	return &discordgo.WebhookParams{
		Username: "Lootkeeper",
		Embeds:   []*discordgo.MessageEmbed{embed},
	}
}
