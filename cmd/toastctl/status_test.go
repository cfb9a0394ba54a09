package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/toastd/internal/model"
)

func TestGenerateStatus(t *testing.T) {
	tests := []struct {
		name  string
		views []model.View
		want  WaybarStatus
	}{
		{
			name: "empty",
			want: WaybarStatus{Alt: "empty", Class: "empty", Tooltip: "No notifications"},
		},
		{
			name: "most severe kind wins",
			views: []model.View{
				{Kind: model.KindInfo},
				{Kind: model.KindWarning},
				{Kind: model.KindInfo},
			},
			want: WaybarStatus{
				Text:    "3",
				Alt:     "warning",
				Class:   "warning",
				Tooltip: "3 visible\nwarning: 1\ninfo: 2",
			},
		},
		{
			name:  "booking outranks success",
			views: []model.View{{Kind: model.KindSuccess}, {Kind: model.KindBooking}},
			want: WaybarStatus{
				Text:    "2",
				Alt:     "booking",
				Class:   "booking",
				Tooltip: "2 visible\nbooking: 1\nsuccess: 1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generateStatus(tt.views))
		})
	}
}

func TestApplyListFilters(t *testing.T) {
	views := []model.View{
		{ID: "a", Kind: model.KindInfo, Title: "Saved", State: "visible"},
		{ID: "b", Kind: model.KindError, Title: "Upload failed", State: "visible"},
		{ID: "c", Kind: model.KindError, Title: "Sync failed", State: "exiting"},
	}

	t.Cleanup(func() { listOpts.kind, listOpts.state, listOpts.search = "", "", "" })

	listOpts.kind = "error"
	got, err := applyListFilters(views)
	assert.NoError(t, err)
	assert.Len(t, got, 2)

	listOpts.state = "exiting"
	got, err = applyListFilters(views)
	assert.NoError(t, err)
	assert.Equal(t, []model.View{views[2]}, got)

	listOpts.kind, listOpts.state, listOpts.search = "", "", "upload"
	got, err = applyListFilters(views)
	assert.NoError(t, err)
	assert.Equal(t, []model.View{views[1]}, got)

	listOpts.search, listOpts.kind = "", "critical"
	_, err = applyListFilters(views)
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
}
