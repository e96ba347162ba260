package session

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pabu-app/focusd/internal/storage"
)

// Summarize renders a human-readable digest of a session's visit history:
// unique page count, average time per entry, and the top three pages by
// accumulated duration. Pure function of its input.
func Summarize(visits []storage.VisitEntry) string {
	if len(visits) == 0 {
		return "No content viewed during this session."
	}

	// Deduplicate by URL, first occurrence winning for title identity.
	// Durations are summed across repeat visits for ranking only.
	var totalMs int64
	totals := make(map[string]int64)
	labels := make(map[string]string)
	order := make([]string, 0, len(visits))
	for _, v := range visits {
		totalMs += v.Duration
		if _, seen := totals[v.URL]; !seen {
			order = append(order, v.URL)
			if v.Title != "" {
				labels[v.URL] = v.Title
			} else {
				labels[v.URL] = v.URL
			}
		}
		totals[v.URL] += v.Duration
	}

	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]] > totals[order[j]]
	})
	if len(order) > 3 {
		order = order[:3]
	}

	// Average divides by entry count, not unique-page count.
	avgMs := totalMs / int64(len(visits))

	var b strings.Builder
	fmt.Fprintf(&b, "Viewed %d unique page%s. ", len(totals), plural(len(totals)))
	fmt.Fprintf(&b, "Average time per page: %s. ", humanDuration(avgMs))

	top := make([]string, len(order))
	for i, url := range order {
		top[i] = labels[url]
	}
	fmt.Fprintf(&b, "Focus areas: %s.", strings.Join(top, ", "))
	return b.String()
}

// humanDuration formats a millisecond count as rounded whole minutes when it
// reaches a full minute, otherwise rounded whole seconds.
func humanDuration(ms int64) string {
	if ms >= 60000 {
		minutes := (ms + 30000) / 60000
		return fmt.Sprintf("%d minute%s", minutes, plural(int(minutes)))
	}
	seconds := (ms + 500) / 1000
	return fmt.Sprintf("%d second%s", seconds, plural(int(seconds)))
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

// FormatElapsed renders an elapsed duration as a clock string: M:SS under an
// hour, H:MM:SS from one hour up.
func FormatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
