package domain

import (
	"fmt"
	"strings"
)

// Category is the class of a flood area as encoded in its notation.
type Category int

const (
	CategoryNone Category = iota
	CategoryWarning
	CategoryAlert
)

func (c Category) String() string {
	switch c {
	case CategoryWarning:
		return "warning"
	case CategoryAlert:
		return "alert"
	default:
		return "none"
	}
}

// Scheme is a notation convention: the substrings marking warning and alert
// areas.
type Scheme struct {
	Name          string
	WarningMarker string
	AlertMarker   string
}

var (
	// ShortScheme matches "FW" and "WA" anywhere in the notation.
	ShortScheme = Scheme{Name: "short", WarningMarker: "FW", AlertMarker: "WA"}
	// LongScheme matches the fuller "FWF" and "WAF" codes.
	LongScheme = Scheme{Name: "long", WarningMarker: "FWF", AlertMarker: "WAF"}
)

// ParseScheme accepts "short" or "long".
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ShortScheme.Name:
		return ShortScheme, nil
	case LongScheme.Name:
		return LongScheme, nil
	default:
		return Scheme{}, fmt.Errorf("unknown notation scheme %q", name)
	}
}

// Categorize returns the category of notation. Membership is a plain
// substring test, warning first.
func (s Scheme) Categorize(notation string) Category {
	switch {
	case strings.Contains(notation, s.WarningMarker):
		return CategoryWarning
	case strings.Contains(notation, s.AlertMarker):
		return CategoryAlert
	default:
		return CategoryNone
	}
}
