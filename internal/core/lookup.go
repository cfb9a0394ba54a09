// Package core provides lookup and filtering over stack snapshots.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/toastd/internal/model"
)

var (
	// ErrNotFound is returned when a reference matches no visible notification.
	ErrNotFound = errors.New("notification not found")
	// ErrAmbiguous is returned when an id prefix matches more than one notification.
	ErrAmbiguous = errors.New("ambiguous notification reference")
)

// LookupByID finds a notification by its id.
// Returns nil if not found.
func LookupByID(views []model.View, id string) *model.View {
	for i := range views {
		if views[i].ID == id {
			return &views[i]
		}
	}
	return nil
}

// LookupByIndex finds a notification by its index (1-based for user-friendliness).
// Returns nil if index is out of bounds.
func LookupByIndex(views []model.View, index int) *model.View {
	idx := index - 1
	if idx < 0 || idx >= len(views) {
		return nil
	}
	return &views[idx]
}

// LookupByPrefix finds the single notification whose id starts with prefix.
// Matching is case-insensitive.
func LookupByPrefix(views []model.View, prefix string) (*model.View, error) {
	prefix = strings.ToUpper(prefix)
	var found *model.View
	for i := range views {
		if !strings.HasPrefix(strings.ToUpper(views[i].ID), prefix) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %q", ErrAmbiguous, prefix)
		}
		found = &views[i]
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, prefix)
	}
	return found, nil
}

// Resolve turns a user reference into a notification. A reference is tried
// as a 1-based index, then an exact id, then an id prefix.
func Resolve(views []model.View, ref string) (*model.View, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
	}

	// Ids are 26 characters, so short numbers are always indexes
	if index, err := strconv.Atoi(ref); err == nil && len(ref) < 6 {
		if v := LookupByIndex(views, index); v != nil {
			return v, nil
		}
		return nil, fmt.Errorf("%w: index %d out of range (1-%d)", ErrNotFound, index, len(views))
	}

	if v := LookupByID(views, ref); v != nil {
		return v, nil
	}
	return LookupByPrefix(views, ref)
}

// Search finds notifications matching a term in title or body.
// Case-insensitive substring match.
func Search(views []model.View, term string) []model.View {
	if term == "" {
		return views
	}

	term = strings.ToLower(term)
	var result []model.View
	for _, v := range views {
		if strings.Contains(strings.ToLower(v.Title), term) ||
			strings.Contains(strings.ToLower(v.Body), term) {
			result = append(result, v)
		}
	}
	return result
}
