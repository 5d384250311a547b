package schedule

import "time"

// MaxRepeatCount bounds weekly repeat expansion.
const MaxRepeatCount = 10

// RepeatRequest describes a weekly recurring booking request.
type RepeatRequest struct {
	Date  string // YYYY-MM-DD of the first occurrence
	Time  string // HH:MM
	Count int    // number of weekly occurrences, 1..MaxRepeatCount
}

// Candidate is one occurrence produced by ExpandRepeat.
type Candidate struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Summary reports the outcome of a repeat booking.
type Summary struct {
	Total   int `json:"total"`
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// RepeatPlan is the result of expanding and filtering a repeat request.
type RepeatPlan struct {
	Accepted []Candidate
	Skipped  []Candidate
}

// Summary returns the counts for the plan.
func (p RepeatPlan) Summary() Summary {
	return Summary{
		Total:   len(p.Accepted) + len(p.Skipped),
		Added:   len(p.Accepted),
		Skipped: len(p.Skipped),
	}
}

// Validate checks the repeat request.
// PRE: none
// POST: Returns nil if date, time and count are usable
func (r RepeatRequest) Validate() error {
	if _, err := ParseDate(r.Date); err != nil {
		return err
	}
	if _, err := BookingWindow.ValidateSlot(r.Time); err != nil {
		return err
	}
	if r.Count < 1 || r.Count > MaxRepeatCount {
		return ErrInvalidRepeatCount
	}
	return nil
}

// CandidateDates returns the weekly occurrence dates, first one included.
// PRE: r has been validated
func (r RepeatRequest) CandidateDates() []string {
	base, err := ParseDate(r.Date)
	if err != nil {
		return nil
	}
	dates := make([]string, 0, r.Count)
	for i := 0; i < r.Count; i++ {
		dates = append(dates, base.AddDate(0, 0, 7*i).Format(DateLayout))
	}
	return dates
}

// ExpandRepeat generates the weekly candidates and drops those colliding with
// the snapshot. The snapshot is keyed by date and is taken once, before any
// candidate is written.
// PRE: r has been validated
// POST: Every candidate lands in exactly one of Accepted or Skipped
func ExpandRepeat(r RepeatRequest, snapshot map[string][]Booked) RepeatPlan {
	var plan RepeatPlan
	for _, d := range r.CandidateDates() {
		c := Candidate{Date: d, Time: r.Time}
		if IsAvailable(snapshot[d], "", r.Time, BookingWindow) {
			plan.Accepted = append(plan.Accepted, c)
		} else {
			plan.Skipped = append(plan.Skipped, c)
		}
	}
	return plan
}

// DateRange returns the first and last dates covered by the request.
func (r RepeatRequest) DateRange() (string, string) {
	dates := r.CandidateDates()
	if len(dates) == 0 {
		return r.Date, r.Date
	}
	return dates[0], dates[len(dates)-1]
}

// AddDays shifts a YYYY-MM-DD date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// Today returns now's date in DateLayout.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}
