package domain

import (
	"encoding/json"
	"sort"
)

// UncheckedPlaceholder is submitted by the selection form when no box is
// ticked. It is never stored.
const UncheckedPlaceholder = "_unchecked"

// SingleArea is the area shown on its own when a search finds exactly one
// candidate in a category. Accept is set when the user confirms it.
type SingleArea struct {
	ID     string `json:"id,omitempty"`
	Accept bool   `json:"accept,omitempty"`
}

// SubscriptionSet is the set of area notations a user has opted into. The
// zero value is an empty set ready to use.
type SubscriptionSet struct {
	ids map[string]struct{}
}

// NewSubscriptionSet builds a set from ids, ignoring duplicates.
func NewSubscriptionSet(ids ...string) SubscriptionSet {
	var s SubscriptionSet
	for _, id := range ids {
		s.add(id)
	}
	return s
}

// Len returns the number of subscribed areas.
func (s SubscriptionSet) Len() int { return len(s.ids) }

// Contains reports exact membership.
func (s SubscriptionSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the members in ascending order.
func (s SubscriptionSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s SubscriptionSet) Clone() SubscriptionSet {
	return NewSubscriptionSet(s.IDs()...)
}

// InCategory returns the members the scheme places in category c.
func (s SubscriptionSet) InCategory(scheme Scheme, c Category) []string {
	var out []string
	for _, id := range s.IDs() {
		if scheme.Categorize(id) == c {
			out = append(out, id)
		}
	}
	return out
}

// ApplyWarningSelection replaces the choices made on the warning page.
func (s *SubscriptionSet) ApplyWarningSelection(current []FloodArea, checked []string, single SingleArea) {
	s.applySelection(current, checked, single)
}

// ApplyAlertSelection replaces the choices made on the alert page.
func (s *SubscriptionSet) ApplyAlertSelection(current []FloodArea, checked []string, single SingleArea) {
	s.applySelection(current, checked, single)
}

// applySelection clears every area offered on the page, since unticked boxes
// are not submitted, then adds back what was ticked.
func (s *SubscriptionSet) applySelection(current []FloodArea, checked []string, single SingleArea) {
	for _, a := range current {
		s.remove(a.Notation)
	}
	s.remove(single.ID)

	for _, id := range checked {
		if id == UncheckedPlaceholder {
			continue
		}
		s.add(id)
	}
	if single.Accept {
		s.add(single.ID)
	}
}

// Remove deletes id and reports whether it was present. Removing an absent id
// is a no-op.
func (s *SubscriptionSet) Remove(id string) bool {
	return s.remove(id)
}

func (s *SubscriptionSet) add(id string) {
	if id == "" {
		return
	}
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	s.ids[id] = struct{}{}
}

func (s *SubscriptionSet) remove(id string) bool {
	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)
	return true
}

// Diff returns the ids in s missing from before, and the ids in before
// missing from s.
func (s SubscriptionSet) Diff(before SubscriptionSet) (added, removed []string) {
	for _, id := range s.IDs() {
		if !before.Contains(id) {
			added = append(added, id)
		}
	}
	for _, id := range before.IDs() {
		if !s.Contains(id) {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// MarshalJSON encodes the set as a sorted array.
func (s SubscriptionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes an array of ids.
func (s *SubscriptionSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSubscriptionSet(ids...)
	return nil
}
