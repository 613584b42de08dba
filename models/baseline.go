package models

import "time"

type MentalHealthBaseline struct {
	Stress        int     `json:"stress"`
	Anxiety       int     `json:"anxiety"`
	MoodStability int     `json:"moodStability"`
	Average       float64 `json:"average"`
}

type SleepBaseline struct {
	Quality int     `json:"quality"`
	Hours   float64 `json:"hours"`
}

type TimeAvailability struct {
	Weekday int     `json:"weekday"`
	Weekend int     `json:"weekend"`
	Average float64 `json:"average"`
}

// Baseline is derived from an assessment each time it is needed; it is
// never stored.
type Baseline struct {
	MentalHealth     MentalHealthBaseline `json:"mentalHealth"`
	Sleep            SleepBaseline        `json:"sleep"`
	TimeAvailability TimeAvailability     `json:"timeAvailability"`
	Goals            []string             `json:"goals"`
	Values           []string             `json:"values"`
	PreferredTone    Tone                 `json:"preferredTone"`
	Timestamp        time.Time            `json:"timestamp"`
}

// CurrentState is the 7-day average of recent check-ins. Stress is the raw
// average (10 minus the mean inverted score).
type CurrentState struct {
	Stress       float64 `json:"stress"`
	Energy       float64 `json:"energy"`
	SleepQuality float64 `json:"sleepQuality"`
}

// Improvement holds percentage changes relative to the baseline. A positive
// stress value means stress went down.
type Improvement struct {
	Stress float64 `json:"stress"`
	Energy float64 `json:"energy"`
	Sleep  float64 `json:"sleep"`
}

type Progress struct {
	Baseline    *Baseline     `json:"baseline"`
	Current     *CurrentState `json:"current"`
	Improvement *Improvement  `json:"improvement"`
	DaysTracked int           `json:"daysTracked"`
}
