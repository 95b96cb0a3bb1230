package digest

import (
	"fmt"
	"strings"
	"time"
)

// MaxSMSChars bounds the shift message the prompt asks for.
const MaxSMSChars = 200

// Shift describes the person the SMS is for and their working hours.
// Start and End are hours of the day; Start > End means the shift runs
// overnight.
type Shift struct {
	Role      string
	PetName   string
	PetKind   string
	SignOff   string
	Start     int
	End       int
	ZoneLabel string
}

func (s Shift) Overnight() bool { return s.Start > s.End }

// RemainingHours is the number of whole hours left in the shift at t, or 0
// outside it.
func (s Shift) RemainingHours(t time.Time) int {
	h := t.Hour()
	if s.Overnight() {
		switch {
		case h >= s.Start:
			return 24 - h + s.End
		case h < s.End:
			return s.End - h
		default:
			return 0
		}
	}
	if h >= s.Start && h < s.End {
		return s.End - h
	}
	return 0
}

func (s Shift) window() string {
	return fmt.Sprintf("from %s to %s %s", clockLabel(s.Start), clockLabel(s.End), s.ZoneLabel)
}

func clockLabel(hour int) string {
	switch {
	case hour == 0:
		return "12 am"
	case hour == 12:
		return "12 pm"
	case hour > 12:
		return fmt.Sprintf("%d pm", hour-12)
	default:
		return fmt.Sprintf("%d am", hour)
	}
}

// ShiftMessage is the decoded SMS payload.
type ShiftMessage struct {
	Message string `json:"message"`
}

func (m ShiftMessage) Text() string {
	return strings.TrimSpace(m.Message)
}

// ShiftPrompt asks for the motivational SMS with hours left in the shift.
func ShiftPrompt(s Shift, hours int) string {
	return fmt.Sprintf(`Create a funny motivational message for a %[1]s with %[2]d hours left in the shift (%[3]s). The message should indicate how much is left in the shift and include a joke related to our %[4]s %[5]s.

Keep the message very casual, try to be funny, and not too cheesy and keep it under %[6]d characters. End it with '%[7]s'.

Return the response as a JSON object with the following structure:

{
  "message": "Your message text here, mentioning %[2]d hours left and a joke."
}

Make the message encouraging, light-hearted, and relevant to a shift as a %[1]s.

Return ONLY the JSON object, no additional text or formatting.`,
		s.Role, hours, strings.TrimSpace(s.window()), s.PetKind, s.PetName, MaxSMSChars, s.SignOff)
}
