package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionForwardOnly(t *testing.T) {
	cases := []struct {
		from    ComplaintStatus
		to      ComplaintStatus
		allowed bool
	}{
		{ComplaintStatusPending, ComplaintStatusInProgress, true},
		{ComplaintStatusInProgress, ComplaintStatusCompleted, true},
		{ComplaintStatusPending, ComplaintStatusCompleted, false},
		{ComplaintStatusInProgress, ComplaintStatusPending, false},
		{ComplaintStatusCompleted, ComplaintStatusInProgress, false},
		{ComplaintStatusCompleted, ComplaintStatusPending, false},
		{ComplaintStatusPending, ComplaintStatusPending, false},
		{ComplaintStatusCompleted, ComplaintStatusCompleted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanTransitionRejectsUnknownStatus(t *testing.T) {
	assert.False(t, CanTransition("resolved", ComplaintStatusCompleted))
	assert.False(t, CanTransition(ComplaintStatusPending, "archived"))
}

func TestParseComplaintStatus(t *testing.T) {
	status, ok := ParseComplaintStatus("in_progress")
	assert.True(t, ok)
	assert.Equal(t, ComplaintStatusInProgress, status)

	_, ok = ParseComplaintStatus("IN_PROGRESS")
	assert.False(t, ok)
	_, ok = ParseComplaintStatus("")
	assert.False(t, ok)
}
