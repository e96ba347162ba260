package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SessionStatus represents the lifecycle state of a focus session.
type SessionStatus string

const (
	StatusActive SessionStatus = "active"
	StatusPaused SessionStatus = "paused"
	StatusEnded  SessionStatus = "ended"
)

// UnmarshalJSON implements json.Unmarshaler to normalize the status to
// lowercase and validate it.
func (s *SessionStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	normalized := SessionStatus(strings.ToLower(raw))

	switch normalized {
	case StatusActive, StatusPaused, StatusEnded:
		*s = normalized
		return nil
	default:
		return fmt.Errorf("invalid session status: %s (must be active, paused, or ended)", raw)
	}
}

// MarshalJSON implements json.Marshaler to ensure lowercase output.
func (s SessionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// VisitEntry is one contiguous interval of attention on a single URL within a
// session. Duration is mutated in place while the entry is the currently
// tracked one and frozen once superseded.
type VisitEntry struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	Duration  int64     `json:"duration"` // milliseconds
}

// Session is the mutable active-session snapshot. At most one session exists
// process-wide; the project fields are denormalized at session-start time so
// the session survives project edits or deletion.
type Session struct {
	ID                      string        `json:"id"`
	ProjectID               string        `json:"projectId"`
	ProjectName             string        `json:"projectName"`
	StartTime               time.Time     `json:"startTime"`
	Status                  SessionStatus `json:"status"`
	PausedAt                *time.Time    `json:"pausedAt,omitempty"`
	TotalPauseDuration      int64         `json:"totalPauseDuration"` // milliseconds
	URLHistory              []VisitEntry  `json:"urlHistory"`
	ProjectShortDescription string        `json:"projectShortDescription,omitempty"`
	ProjectLongDescription  string        `json:"projectLongDescription,omitempty"`
}

// SessionHistoryEntry is the immutable archival record of a completed session.
type SessionHistoryEntry struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"projectId"`
	ProjectName string       `json:"projectName"`
	StartTime   time.Time    `json:"startTime"`
	EndTime     time.Time    `json:"endTime"`
	Duration    int64        `json:"duration"` // active milliseconds, pauses excluded
	URLsViewed  []VisitEntry `json:"urlsViewed"`
	Summary     string       `json:"summary"`
}

// Project is a catalog entry the child can start a focus session against.
type Project struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	ShortDescription string    `json:"shortDescription"`
	LongDescription  string    `json:"longDescription"`
	Image            string    `json:"image,omitempty"`
	IsFavorite       bool      `json:"isFavorite"`
	IsApproved       bool      `json:"isApproved"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NotificationFrequency controls when session summary emails are sent.
type NotificationFrequency string

const (
	FrequencyOff              NotificationFrequency = "off"
	FrequencyAfterEachSession NotificationFrequency = "after_each_session"
	FrequencyDaily            NotificationFrequency = "daily"
	FrequencyWeekly           NotificationFrequency = "weekly"
)

// Settings holds user preferences. Missing keys in the persisted JSON keep
// their default values (field-by-field merge on load).
type Settings struct {
	ChildName             string                `json:"childName"`
	SavedPin              string                `json:"savedPin"`
	Notifications         bool                  `json:"notifications"`
	SoundEffects          bool                  `json:"soundEffects"`
	TimeRestrictions      bool                  `json:"timeRestrictions"`
	MaxSessionTime        int                   `json:"maxSessionTime"` // minutes
	NotificationEmail     string                `json:"notification_email"`
	NotificationFrequency NotificationFrequency `json:"notification_frequency"`
}

// DefaultSettings returns the settings applied when nothing has been saved.
// Backends start from these and overlay the persisted JSON so that keys
// missing from older snapshots keep their defaults.
func DefaultSettings() Settings {
	return Settings{
		ChildName:             "Alex",
		SavedPin:              "1234",
		Notifications:         true,
		SoundEffects:          true,
		TimeRestrictions:      false,
		MaxSessionTime:        60,
		NotificationEmail:     "",
		NotificationFrequency: FrequencyOff,
	}
}

// Recommendation is one suggested learning resource for a project.
type Recommendation struct {
	Title  string `json:"title"`
	Domain string `json:"domain"`
	URL    string `json:"url"`
}

// RecommendationCacheEntry holds cached recommendations for a project. Entries
// are valid for a fixed TTL from Timestamp and are discarded once expired.
type RecommendationCacheEntry struct {
	Recommendations []Recommendation `json:"recommendations"`
	Timestamp       time.Time        `json:"timestamp"`
}

// Expired reports whether the entry is older than ttl at the given instant.
func (e RecommendationCacheEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.Timestamp) >= ttl
}
