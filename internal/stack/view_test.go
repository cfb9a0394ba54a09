package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/toastd/internal/lifecycle"
)

func TestViewState(t *testing.T) {
	tests := []struct {
		state lifecycle.State
		want  string
	}{
		{lifecycle.StateEntering, "entering"},
		{lifecycle.StateVisible, "visible"},
		{lifecycle.StateExiting, "exiting"},
		// exit finished, dequeue pending
		{lifecycle.StateRemoved, "exiting"},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, viewState(tt.state))
		})
	}
}
