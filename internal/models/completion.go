package models

import "math"

// completionChecks is the number of per-field checks behind Percentage: four
// scalars and five lists.
const completionChecks = 9

// Percentage is the share of filled fields, rounded to the nearest integer.
func Percentage(p ICP) int {
	checks := []bool{
		p.Role != "",
		p.Industry != "",
		p.CompanySize != "",
		p.Geography != "",
		len(p.PainPoints) > 0,
		len(p.Goals) > 0,
		len(p.PurchaseTriggers) > 0,
		len(p.Objections) > 0,
		len(p.TechStack) > 0,
	}
	filled := 0
	for _, ok := range checks {
		if ok {
			filled++
		}
	}
	return int(math.Round(float64(filled) * 100 / completionChecks))
}

// ActiveSection is the first incomplete section in precedence order. A complete
// profile reports the last section.
func ActiveSection(p ICP) Section {
	for _, s := range Sections {
		if !IsSectionComplete(s, p) {
			return s
		}
	}
	return Sections[len(Sections)-1]
}

// SectionStatus is the derived UI state of one section.
type SectionStatus struct {
	Key         Section `json:"key"`
	Title       string  `json:"title"`
	Complete    bool    `json:"complete"`
	Locked      bool    `json:"locked"`
	Active      bool    `json:"active"`
	LockMessage string  `json:"lockMessage,omitempty"`
}

// Status is a snapshot of everything a presentation layer derives from an ICP.
type Status struct {
	Percentage    int             `json:"percentage"`
	ActiveSection Section         `json:"activeSection"`
	Complete      bool            `json:"complete"`
	HasData       bool            `json:"hasData"`
	Sections      []SectionStatus `json:"sections"`
}

// StatusOf computes the Status of p.
func StatusOf(p ICP) Status {
	st := Status{
		Percentage:    Percentage(p),
		ActiveSection: ActiveSection(p),
		Complete:      p.IsComplete(),
		HasData:       p.HasAnyData(),
		Sections:      make([]SectionStatus, 0, len(Sections)),
	}
	for _, s := range Sections {
		complete := IsSectionComplete(s, p)
		locked := IsSectionLocked(s, p)
		ss := SectionStatus{
			Key:      s,
			Title:    s.Title(),
			Complete: complete,
			Locked:   locked,
			Active:   !locked && !complete,
		}
		if locked {
			ss.LockMessage = s.LockMessage()
		}
		st.Sections = append(st.Sections, ss)
	}
	return st
}

// Tracker decides which section a UI should expand as the profile evolves.
// It navigates forward only when completion grows, so a reset never steals focus.
// Tracker is not safe for concurrent use.
type Tracker struct {
	open     Section
	last     int
	observed bool
}

// NewTracker starts with the first section expanded.
func NewTracker() *Tracker {
	return &Tracker{open: SectionFirmographics}
}

// Observe records p. It returns the section to navigate to and true when the
// percentage increased since the previous observation. The first observation
// only sets the baseline.
func (t *Tracker) Observe(p ICP) (Section, bool) {
	pct := Percentage(p)
	if !t.observed {
		t.observed = true
		t.last = pct
		return "", false
	}
	prev := t.last
	t.last = pct
	if pct > prev {
		t.open = ActiveSection(p)
		return t.open, true
	}
	return "", false
}

// Open returns the expanded section, or "" when every section is collapsed.
func (t *Tracker) Open() Section {
	return t.open
}

// Toggle expands s, or collapses it when it is already the open section.
// Only one section is open at a time.
func (t *Tracker) Toggle(s Section) Section {
	if t.open == s {
		t.open = ""
	} else {
		t.open = s
	}
	return t.open
}
