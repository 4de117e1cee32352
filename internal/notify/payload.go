package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/pawminder/pawminder/internal/model"
)

// BuildPayload renders n into the body and Content-Type for the
// webhook's type. Generic webhooks may carry a custom template.
func BuildPayload(wh *model.Webhook, n *model.Notification) ([]byte, string, error) {
	var body []byte
	var err error

	switch wh.Type {
	case model.WebhookTypeDiscord:
		body, err = discordBody(n)
	case model.WebhookTypeSlack:
		body, err = slackBody(n)
	default:
		body, err = genericBody(n, wh.Template)
	}
	return body, "application/json", err
}

func colorOf(n *model.Notification) int {
	if n.Color != 0 {
		return n.Color
	}
	return model.DefaultColorForType(n.Type)
}

func timestampOf(n *model.Notification) string {
	return n.Timestamp.UTC().Format(time.RFC3339)
}

// genericBody renders the plain JSON envelope, or the webhook's custom
// template when one is configured.
func genericBody(n *model.Notification, tmpl string) ([]byte, error) {
	if tmpl != "" {
		t, err := template.New("webhook").Parse(tmpl)
		if err != nil {
			return nil, fmt.Errorf("parsing webhook template: %w", err)
		}
		var buf bytes.Buffer
		err = t.Execute(&buf, map[string]any{
			"Type":      string(n.Type),
			"Title":     n.Title,
			"Message":   n.Message,
			"Fields":    n.Fields,
			"Timestamp": n.Timestamp,
			"Color":     colorOf(n),
		})
		if err != nil {
			return nil, fmt.Errorf("rendering webhook template: %w", err)
		}
		return buf.Bytes(), nil
	}

	return json.Marshal(struct {
		Type      string            `json:"type"`
		Title     string            `json:"title"`
		Message   string            `json:"message"`
		Fields    map[string]string `json:"fields,omitempty"`
		Timestamp string            `json:"timestamp"`
		Color     int               `json:"color,omitempty"`
	}{
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Fields:    n.Fields,
		Timestamp: timestampOf(n),
		Color:     colorOf(n),
	})
}

type discordEmbed struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
	Footer      discordFooter  `json:"footer"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordFooter struct {
	Text string `json:"text"`
}

func discordBody(n *model.Notification) ([]byte, error) {
	embed := discordEmbed{
		Title:       n.Title,
		Description: n.Message,
		Color:       colorOf(n),
		Timestamp:   timestampOf(n),
		Footer:      discordFooter{Text: "Pawminder"},
	}
	for key, value := range n.Fields {
		embed.Fields = append(embed.Fields, discordField{Name: key, Value: value, Inline: true})
	}

	return json.Marshal(struct {
		Embeds []discordEmbed `json:"embeds"`
	}{Embeds: []discordEmbed{embed}})
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func slackBody(n *model.Notification) ([]byte, error) {
	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: n.Title}},
		{Type: "section", Text: &slackText{Type: "mrkdwn", Text: n.Message}},
	}
	if len(n.Fields) > 0 {
		section := slackBlock{Type: "section"}
		for key, value := range n.Fields {
			section.Fields = append(section.Fields, slackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*%s*\n%s", key, value),
			})
		}
		blocks = append(blocks, section)
	}

	return json.Marshal(struct {
		Text        string       `json:"text"`
		Blocks      []slackBlock `json:"blocks"`
		Attachments []struct {
			Color string `json:"color"`
		} `json:"attachments,omitempty"`
	}{
		Text:   fmt.Sprintf("%s: %s", n.Title, n.Message),
		Blocks: blocks,
		Attachments: []struct {
			Color string `json:"color"`
		}{
			{Color: fmt.Sprintf("#%06X", colorOf(n))},
		},
	})
}

// SummaryLine renders a one-line description of a dispatch target for
// CLI output, with long URLs trimmed.
func SummaryLine(wh *model.Webhook) string {
	url := wh.URL
	if len(url) > 40 {
		url = url[:40] + "..."
	}
	return fmt.Sprintf("%s (%s) %s", wh.Name, strings.ToLower(wh.Type), url)
}
