package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/studypack/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier sends study pack announcements to a Slack channel via
// Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	pause      time.Duration // gap between consecutive messages
}

// NewSlackNotifier returns a notifier that posts each pack to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		pause:      500 * time.Millisecond,
	}
}

// Notify sends each pack as a separate Slack message using Block Kit.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (s *SlackNotifier) Notify(records []model.PackRecord) error {
	if len(records) == 0 {
		return nil
	}

	failures := 0
	for i, r := range records {
		if i > 0 {
			time.Sleep(s.pause)
		}

		if err := s.sendMessage(r); err != nil {
			s.logger.Error("slack notification failed", "id", r.ID, "source", r.Source, "error", err)
			failures++
		}
	}

	if failures == len(records) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "sent", len(records)-failures, "failed", failures)
	return nil
}

func (s *SlackNotifier) sendMessage(r model.PackRecord) error {
	body, err := json.Marshal(buildPayload(r))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(body)
	if err != nil {
		return err
	}

	if status == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(retryAfter)
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		status, _, err = s.post(body)
		if err != nil {
			return fmt.Errorf("retry: %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		s.logger.Info("slack message sent", "id", r.ID, "source", r.Source, "retried", true)
		return nil
	}

	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Info("slack message sent", "id", r.ID, "source", r.Source)
	return nil
}

func (s *SlackNotifier) post(body []byte) (int, string, error) {
	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, resp.Header.Get("Retry-After"), nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a sample study pack notification to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	rec := model.PackRecord{
		ID:          "test-001",
		Source:      "integration-test.txt",
		ContentHash: "test",
		CreatedAt:   time.Now(),
		Pack: model.StudyPack{
			Concepts:      model.Success(`{"document_metadata":{"topic":"Integration Verified"},"extracted_concepts":[]}`),
			Roadmap:       model.Success(`{}`),
			Summary:       model.Success(`{"title":"Test notification","summary":"If you can read this, studypack can reach your channel.","steps":[]}`),
			Visualization: model.Success("Visualization generated successfully: visualizations/concept_map_Integration_Verified.png"),
		},
	}
	return n.Notify([]model.PackRecord{rec})
}

func buildPayload(r model.PackRecord) slackPayload {
	created := "Just now"
	if !r.CreatedAt.IsZero() {
		created = r.CreatedAt.Local().Format(time.RFC1123)
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "📚 Study pack ready: " + packTopic(r)},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Source:*\n" + r.Source},
				{Type: "mrkdwn", Text: "*Created:*\n" + created},
			},
		},
	}

	if title, summary := packHeadline(r); title != "" || summary != "" {
		text := summary
		if title != "" {
			text = "*" + title + "*\n" + summary
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: text},
		})
	}

	var status []string
	for _, line := range sectionStatus(r) {
		icon := "✅"
		if strings.HasSuffix(line, " failed") {
			icon = "⚠️"
		}
		status = append(status, icon+" "+line)
	}
	blocks = append(blocks, slackBlock{
		Type: "section",
		Text: &slackText{Type: "mrkdwn", Text: strings.Join(status, "\n")},
	})

	footer := "Open with `studypack view " + r.ID + "`"
	if path := conceptMapPath(r); path != "" {
		footer += " · concept map: " + path
	}
	blocks = append(blocks,
		slackBlock{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: footer}},
		},
		slackBlock{Type: "divider"},
	)

	return slackPayload{Blocks: blocks}
}
