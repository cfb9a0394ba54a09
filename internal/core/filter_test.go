package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
)

var filterNow = time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

func filterViews() []model.View {
	return []model.View{
		{ID: "1", Kind: model.KindInfo, State: "visible", CreatedAt: filterNow.Add(-10 * time.Second)},
		{ID: "2", Kind: model.KindError, State: "exiting", CreatedAt: filterNow.Add(-2 * time.Second)},
		{ID: "3", Kind: model.KindInfo, State: "entering", CreatedAt: filterNow},
	}
}

func ids(views []model.View) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{"no filters", FilterOptions{}, []string{"1", "2", "3"}},
		{"by kind", FilterOptions{Kinds: []model.Kind{model.KindInfo}}, []string{"1", "3"}},
		{"by several kinds", FilterOptions{Kinds: []model.Kind{model.KindError, model.KindInfo}}, []string{"1", "2", "3"}},
		{"by state", FilterOptions{State: "Exiting"}, []string{"2"}},
		{"since", FilterOptions{Since: 5 * time.Second, Now: filterNow}, []string{"2", "3"}},
		{"limit keeps order", FilterOptions{Limit: 2}, []string{"1", "2"}},
		{"combined", FilterOptions{Kinds: []model.Kind{model.KindInfo}, Limit: 1}, []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(filterViews(), tt.opts)))
		})
	}
}

func TestFilter_Empty(t *testing.T) {
	assert.Empty(t, Filter(nil, FilterOptions{}))
}

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds("error, booking,,")
	require.NoError(t, err)
	assert.Equal(t, []model.Kind{model.KindError, model.KindBooking}, kinds)

	kinds, err = ParseKinds("")
	require.NoError(t, err)
	assert.Empty(t, kinds)

	_, err = ParseKinds("info,urgent")
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
}

func TestCountByKind(t *testing.T) {
	counts := CountByKind(filterViews())
	assert.Equal(t, 2, counts[model.KindInfo])
	assert.Equal(t, 1, counts[model.KindError])
	assert.Equal(t, 0, counts[model.KindBooking])
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"0", 0, false},
		{"", 0, false},
		{"30s", 30 * time.Second, false},
		{"48h", 48 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"xd", 0, true},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
