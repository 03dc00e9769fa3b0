package ical_test

import (
	"strings"
	"testing"
	"time"

	"schedule-service/internal/ical"
	"schedule-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRender_SummaryListsParticipants(t *testing.T) {
	session := model.SessionDetails{
		Session: model.Session{
			ID:              uuid.New(),
			StartsAt:        time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			DurationMinutes: 60,
			Status:          model.SessionScheduled,
			CreatedAt:       time.Now(),
		},
		Participants: []model.SessionParticipant{
			{StudentName: "Alex"},
			{StudentName: "Brook"},
		},
	}

	out := ical.Render([]model.SessionDetails{session})
	require.Contains(t, out, "BEGIN:VCALENDAR")
	require.Contains(t, out, "Training: Alex")
	require.Contains(t, out, "STATUS:CONFIRMED")
}

func TestRender_CancelledSessionMarked(t *testing.T) {
	session := model.SessionDetails{
		Session: model.Session{
			ID:              uuid.New(),
			StartsAt:        time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			DurationMinutes: 60,
			Status:          model.SessionCancelled,
			CreatedAt:       time.Now(),
		},
	}

	out := ical.Render([]model.SessionDetails{session})
	require.Contains(t, out, "STATUS:CANCELLED")
	require.Contains(t, out, "Training session")
}

func TestRender_EmptyFeedStillValid(t *testing.T) {
	out := ical.Render(nil)
	require.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	require.Contains(t, out, "END:VCALENDAR")
}
