// Package notify delivers session summary emails through an EmailJS-compatible
// REST endpoint. Delivery is strictly best-effort: the client never returns an
// error to its caller, only a boolean, so a broken mail provider can never
// block a session from ending.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pabu-app/focusd/internal/metrics"
	"github.com/pabu-app/focusd/internal/storage"
	"github.com/rs/zerolog"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether the address passes the simple format guard
// gating notification delivery.
func IsValidEmail(address string) bool {
	return emailPattern.MatchString(address)
}

// Notifier accepts a finished session record and a destination address and
// reports delivery success. Implementations never panic into the caller.
type Notifier interface {
	SendSummary(ctx context.Context, entry storage.SessionHistoryEntry, email, childName string) bool
}

// Config holds the email delivery settings.
type Config struct {
	BaseURL    string
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	Timeout    time.Duration
}

// EmailClient is the EmailJS-backed Notifier implementation.
type EmailClient struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

// NewEmailClient creates a notifier for the configured EmailJS service.
func NewEmailClient(cfg Config, logger zerolog.Logger) *EmailClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &EmailClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams templateParams `json:"template_params"`
}

type templateParams struct {
	RecipientEmail     string `json:"recipientEmail"`
	ChildName          string `json:"childName"`
	ProjectName        string `json:"projectName"`
	Duration           string `json:"duration"`
	StartTime          string `json:"startTime"`
	EndTime            string `json:"endTime"`
	URLsViewed         int    `json:"urlsViewed"`
	TopSites           string `json:"topSites"`
	ProjectDescription string `json:"projectDescription"`
}

// SendSummary delivers a session summary email. Failures are logged and
// reported as false; they are never propagated.
func (c *EmailClient) SendSummary(ctx context.Context, entry storage.SessionHistoryEntry, email, childName string) bool {
	params := buildTemplateParams(entry, email, childName)

	body, err := json.Marshal(sendRequest{
		ServiceID:      c.cfg.ServiceID,
		TemplateID:     c.cfg.TemplateID,
		UserID:         c.cfg.PublicKey,
		AccessToken:    c.cfg.PrivateKey,
		TemplateParams: params,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to encode summary email")
		metrics.NotificationsSent.WithLabelValues("error").Inc()
		return false
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/api/v1.0/email/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build summary email request")
		metrics.NotificationsSent.WithLabelValues("error").Inc()
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", email).Msg("Summary email delivery failed")
		metrics.NotificationsSent.WithLabelValues("error").Inc()
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("email", email).
			Msg("Summary email rejected by provider")
		metrics.NotificationsSent.WithLabelValues("rejected").Inc()
		return false
	}

	c.logger.Info().
		Str("email", email).
		Str("project", entry.ProjectName).
		Msg("Summary email sent")
	metrics.NotificationsSent.WithLabelValues("ok").Inc()
	return true
}

func buildTemplateParams(entry storage.SessionHistoryEntry, email, childName string) templateParams {
	summary := entry.Summary
	if summary == "" {
		summary = "Learning session completed successfully"
	}

	return templateParams{
		RecipientEmail:     email,
		ChildName:          childName,
		ProjectName:        entry.ProjectName,
		Duration:           formatDurationMS(entry.Duration),
		StartTime:          entry.StartTime.Format("3:04 PM"),
		EndTime:            entry.EndTime.Format("3:04 PM"),
		URLsViewed:         len(entry.URLsViewed),
		TopSites:           formatTopSites(entry.URLsViewed),
		ProjectDescription: summary,
	}
}

// formatDurationMS renders milliseconds as "XmYs".
func formatDurationMS(ms int64) string {
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// formatTopSites lists the five longest visits as a bulleted block.
func formatTopSites(visits []storage.VisitEntry) string {
	if len(visits) == 0 {
		return "No sites visited during this session"
	}

	sorted := make([]storage.VisitEntry, len(visits))
	copy(sorted, visits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Duration > sorted[j].Duration
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}

	lines := make([]string, 0, len(sorted))
	for _, visit := range sorted {
		label := visit.Title
		if label == "" {
			label = visit.URL
		}
		minutes := visit.Duration / 60000
		seconds := (visit.Duration % 60000) / 1000
		duration := fmt.Sprintf("%ds", seconds)
		if minutes > 0 {
			duration = fmt.Sprintf("%dm %ds", minutes, seconds)
		}
		lines = append(lines, fmt.Sprintf("• %s - %s", label, duration))
	}
	return strings.Join(lines, "\n")
}
