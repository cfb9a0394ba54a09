package core

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/toastd/internal/model"
)

// FilterOptions specifies criteria for filtering a snapshot.
type FilterOptions struct {
	Kinds []model.Kind  // Keep only these kinds (empty = any)
	State string        // Keep only this lifecycle state (empty = any)
	Since time.Duration // Keep notifications newer than now-since (0 = all)
	Limit int           // Maximum results (0 = unlimited)
	Now   time.Time     // Reference time for Since; zero = time.Now
}

// Filter filters a snapshot, preserving order.
func Filter(views []model.View, opts FilterOptions) []model.View {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	result := make([]model.View, 0, len(views))
	for _, v := range views {
		if len(opts.Kinds) > 0 && !slices.Contains(opts.Kinds, v.Kind) {
			continue
		}
		if opts.State != "" && !strings.EqualFold(v.State, opts.State) {
			continue
		}
		if opts.Since > 0 && v.CreatedAt.Before(now.Add(-opts.Since)) {
			continue
		}
		result = append(result, v)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// ParseKinds parses a comma-separated list of kinds.
func ParseKinds(s string) ([]model.Kind, error) {
	var kinds []model.Kind
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, err := model.ParseKind(part)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// CountByKind returns the number of notifications per kind.
func CountByKind(views []model.View) map[model.Kind]int {
	counts := make(map[model.Kind]int)
	for _, v := range views {
		counts[v.Kind]++
	}
	return counts
}

// ParseDuration parses a duration string with extended formats.
// Supports: 30s, 10m, 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}
