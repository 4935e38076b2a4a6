package domain

import (
	"fmt"
	"time"
)

const (
	// DisplayTitle is the constant title of the persistent display.
	DisplayTitle = "Focus Mode Active"

	ActionPause  = "Pause"
	ActionResume = "Resume"
	ActionEnd    = "End"
)

// Content is what a display host shows for a session.
type Content struct {
	Title           string
	Type            SessionType
	Body            string
	Clock           string // remaining time as MM:SS
	ProgressPercent int
	PrimaryAction   string
	SecondaryAction string
	State           State
}

// Render maps a session snapshot to display content. The end time is
// formatted in loc, or time.Local when loc is nil.
func Render(s Session, loc *time.Location) Content {
	if loc == nil {
		loc = time.Local
	}

	clock := FormatRemaining(s.Remaining)
	body := clock + " remaining"
	if s.HasEndTime() {
		body += " • Ends " + s.EndsAt.In(loc).Format("15:04")
	}

	primary := ActionResume
	if s.State == StateRunning {
		primary = ActionPause
	}

	return Content{
		Title:           DisplayTitle,
		Type:            s.Type,
		Body:            body,
		Clock:           clock,
		ProgressPercent: s.Progress(),
		PrimaryAction:   primary,
		SecondaryAction: ActionEnd,
		State:           s.State,
	}
}

// FormatRemaining renders a duration as zero-padded MM:SS, truncating to
// whole seconds. Minutes are not wrapped into hours.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
