package models

import (
	"errors"
	"fmt"
)

// Itinerary is the structured payload the text-generation model must return.
type Itinerary struct {
	Itinerary []ItineraryDay  `json:"itinerary"`
	Budget    ItineraryBudget `json:"budget"`
}

type ItineraryDay struct {
	Day        int                 `json:"day"`
	Summary    string              `json:"summary"`
	Activities []ItineraryActivity `json:"activities"`
}

type ItineraryActivity struct {
	Title       string   `json:"title"`
	StartTime   string   `json:"startTime,omitempty"`
	EndTime     string   `json:"endTime,omitempty"`
	Description string   `json:"description,omitempty"`
	POIID       string   `json:"poiId,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
}

type ItineraryBudget struct {
	Total         float64  `json:"total"`
	Transport     *float64 `json:"transport,omitempty"`
	Accommodation *float64 `json:"accommodation,omitempty"`
	Dining        *float64 `json:"dining,omitempty"`
	Activities    *float64 `json:"activities,omitempty"`
	Contingency   *float64 `json:"contingency,omitempty"`
}

// Validate checks the invariants a generated itinerary must satisfy before it
// is accepted. A validation failure triggers a regeneration attempt.
func (it *Itinerary) Validate() error {
	if len(it.Itinerary) == 0 {
		return errors.New("itinerary has no days")
	}
	for i, day := range it.Itinerary {
		if day.Day <= 0 {
			return fmt.Errorf("day %d: day number must be positive", i+1)
		}
		if day.Summary == "" {
			return fmt.Errorf("day %d: missing summary", day.Day)
		}
		if len(day.Activities) == 0 {
			return fmt.Errorf("day %d: no activities", day.Day)
		}
		for j, act := range day.Activities {
			if act.Title == "" {
				return fmt.Errorf("day %d activity %d: missing title", day.Day, j+1)
			}
		}
	}
	if it.Budget.Total <= 0 {
		return errors.New("budget total must be positive")
	}
	return nil
}
