package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Weekday accepts either 0..6 (Sunday first) or an English day name in JSON.
type Weekday time.Weekday

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func (w *Weekday) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		if n < 0 || n > 6 {
			return fmt.Errorf("weekday %d out of range 0..6", n)
		}
		*w = Weekday(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("weekday must be a number or a day name")
	}
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return fmt.Errorf("unknown weekday %q", s)
	}
	*w = Weekday(d)
	return nil
}

func (w Weekday) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Weekday(w).String())
}
