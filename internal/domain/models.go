package domain

import "time"

// Policy decides, from the downtime counter alone, when an outage is
// worth a notification. All counts are in probe invocations, so the
// real-world timing only holds while Interval matches the scheduler cadence.
type Policy struct {
	FirstAlertAt int           // first alert once the counter reaches this
	RepeatEvery  int           // period of repeat alerts; 0 disables repeats
	RepeatOffset int           // counter % RepeatEvery that triggers a repeat
	Interval     time.Duration // time between two invocations
}

// DefaultPolicy is tuned for a 5 minute cron: first alert after one hour
// down, then every six hours.
func DefaultPolicy() Policy {
	return Policy{
		FirstAlertAt: 12,
		RepeatEvery:  72,
		RepeatOffset: 60,
		Interval:     5 * time.Minute,
	}
}

// PolicyFromMinutes derives invocation counts from wall-clock settings.
// Each minute value must be a multiple of interval.
func PolicyFromMinutes(interval, firstAfter, repeatEvery, repeatOffset int) (Policy, error) {
	if interval <= 0 {
		return Policy{}, &ConfigurationError{Field: "INTERVAL_MINUTES", Reason: "must be positive"}
	}
	counts := make([]int, 0, 3)
	for _, v := range []struct {
		field   string
		minutes int
	}{
		{"FIRST_ALERT_AFTER_MINUTES", firstAfter},
		{"REPEAT_ALERT_EVERY_MINUTES", repeatEvery},
		{"REPEAT_ALERT_OFFSET_MINUTES", repeatOffset},
	} {
		if v.minutes < 0 || v.minutes%interval != 0 {
			return Policy{}, &ConfigurationError{
				Field:  v.field,
				Reason: "must be a non-negative multiple of INTERVAL_MINUTES",
			}
		}
		counts = append(counts, v.minutes/interval)
	}
	p := Policy{
		FirstAlertAt: counts[0],
		RepeatEvery:  counts[1],
		RepeatOffset: counts[2],
		Interval:     time.Duration(interval) * time.Minute,
	}
	return p, p.Validate()
}

func (p Policy) Validate() error {
	if p.FirstAlertAt < 1 {
		return &ConfigurationError{Field: "FIRST_ALERT_AFTER_MINUTES", Reason: "must cover at least one interval"}
	}
	if p.RepeatEvery < 0 {
		return &ConfigurationError{Field: "REPEAT_ALERT_EVERY_MINUTES", Reason: "must not be negative"}
	}
	if p.RepeatEvery > 0 && (p.RepeatOffset < 0 || p.RepeatOffset >= p.RepeatEvery) {
		return &ConfigurationError{Field: "REPEAT_ALERT_OFFSET_MINUTES", Reason: "must be smaller than the repeat period"}
	}
	if p.Interval <= 0 {
		return &ConfigurationError{Field: "INTERVAL_MINUTES", Reason: "must be positive"}
	}
	return nil
}

// ShouldAlert reports whether reaching counter c warrants a notification.
func (p Policy) ShouldAlert(c int) bool {
	if c <= 0 {
		return false
	}
	if c == p.FirstAlertAt {
		return true
	}
	return p.RepeatEvery > 0 && c%p.RepeatEvery == p.RepeatOffset
}

// OfflineFor is the downtime represented by c consecutive failures.
func (p Policy) OfflineFor(c int) time.Duration {
	return time.Duration(c) * p.Interval
}

// Outcome summarises one check-and-decide cycle.
type Outcome struct {
	Previous  int  `json:"previous"`
	Current   int  `json:"current"`
	Reachable bool `json:"reachable"`
	Saved     bool `json:"saved"`
	Alerted   bool `json:"alerted"`
	Recovered bool `json:"recovered"`
}
