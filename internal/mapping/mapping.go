package mapping

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/PixPMusic/gopher-gesture/internal/actions"
	"github.com/PixPMusic/gopher-gesture/internal/event"
)

// Mapping binds a trigger to an action
type Mapping struct {
	ID          string         `json:"id,omitempty"`
	Description string         `json:"description,omitempty"`
	Trigger     Trigger        `json:"trigger"`
	Action      actions.Action `json:"action"`
}

// NewMapping creates a mapping with a generated ID
func NewMapping(description string, trigger Trigger, action actions.Action) Mapping {
	return Mapping{
		ID:          uuid.New().String(),
		Description: description,
		Trigger:     trigger,
		Action:      action,
	}
}

// Label returns the description, falling back to the trigger
func (m *Mapping) Label() string {
	if m.Description != "" {
		return m.Description
	}
	return m.Trigger.String()
}

// Validate checks the trigger and action of the mapping
func (m *Mapping) Validate(path string, modeCount int) []error {
	errs := m.Trigger.Validate(path + ".trigger")
	return append(errs, m.Action.Validate(path+".action", modeCount)...)
}

// Mode is a named, ordered set of mappings
type Mode struct {
	Name     string    `json:"name"`
	Color    string    `json:"color,omitempty"`
	Mappings []Mapping `json:"mappings,omitempty"`
}

// Scope tells where a resolved mapping came from
type Scope string

const (
	ScopeMode   Scope = "mode"
	ScopeGlobal Scope = "global"
)

// Resolution is the outcome of a successful lookup
type Resolution struct {
	Mapping *Mapping
	Scope   Scope
	Index   int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%s[%d] %s", r.Scope, r.Index, r.Mapping.Label())
}

// Resolve finds the action for a gesture. The mappings of the active mode
// are searched first, in declaration order, then the global mappings; the
// first matching trigger wins. An out-of-range mode searches only the global
// list. Resolve has no side effects: identical inputs resolve identically.
func Resolve(modes []Mode, global []Mapping, ev event.ProcessedEvent, mode int) (Resolution, bool) {
	if mode >= 0 && mode < len(modes) {
		if i, ok := firstMatch(modes[mode].Mappings, ev); ok {
			return Resolution{Mapping: &modes[mode].Mappings[i], Scope: ScopeMode, Index: i}, true
		}
	}
	if i, ok := firstMatch(global, ev); ok {
		return Resolution{Mapping: &global[i], Scope: ScopeGlobal, Index: i}, true
	}
	return Resolution{}, false
}

func firstMatch(mappings []Mapping, ev event.ProcessedEvent) (int, bool) {
	for i := range mappings {
		if mappings[i].Trigger.Matches(ev) {
			return i, true
		}
	}
	return 0, false
}
