package ical

import (
	"fmt"
	"strings"

	"schedule-service/internal/model"

	ics "github.com/arran4/golang-ical"
)

// Render builds an iCalendar feed of the given sessions for import into an
// external calendar. Cancelled sessions are included with a CANCELLED
// status so subscribed calendars drop them.
func Render(sessions []model.SessionDetails) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//schedule-service//EN")

	for i := range sessions {
		session := &sessions[i]

		event := cal.AddEvent(session.ID.String())
		event.SetDtStampTime(session.CreatedAt)
		event.SetStartAt(session.StartsAt)
		event.SetEndAt(session.EndsAt())
		event.SetSummary(summaryFor(session))

		if session.LocationName != nil {
			event.SetLocation(*session.LocationName)
		}
		if session.Notes != nil {
			event.SetDescription(*session.Notes)
		}

		switch session.Status {
		case model.SessionCancelled:
			event.SetStatus(ics.ObjectStatusCancelled)
		default:
			event.SetStatus(ics.ObjectStatusConfirmed)
		}
	}

	return cal.Serialize()
}

func summaryFor(session *model.SessionDetails) string {
	if len(session.Participants) == 0 {
		return "Training session"
	}

	names := make([]string, 0, len(session.Participants))
	for _, p := range session.Participants {
		names = append(names, p.StudentName)
	}
	return fmt.Sprintf("Training: %s", strings.Join(names, ", "))
}
