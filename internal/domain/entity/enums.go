// Package entity contains the core business objects of the geolocation engine.
package entity

import (
	"strings"

	"github.com/pkg/errors"
)

// Format selects which validator and builder path applies to a location's
// variable list. The values are mutually exclusive.
type Format int

const (
	FormatNone Format = iota
	FormatCivicAddress
	FormatGML
	FormatURI
)

var formatNames = []string{"<none>", "civicAddress", "GML", "URI"}

func (f Format) String() string {
	if f < FormatNone || f > FormatURI {
		return "<unknown>"
	}

	return formatNames[f]
}

// ParseFormat converts a configuration string into a Format.
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames[1:] {
		if strings.EqualFold(s, name) {
			return Format(i + 1), nil
		}
	}

	return FormatNone, errors.Errorf("unknown location format: %q", s)
}

// Action describes how an effective profile combines with the entries
// already held in a per-call store.
type Action int

const (
	ActionDiscard Action = iota
	ActionAppend
	ActionPrepend
	ActionReplace
)

var actionNames = []string{"discard", "append", "prepend", "replace"}

func (a Action) String() string {
	if a < ActionDiscard || a > ActionReplace {
		return "<unknown>"
	}

	return actionNames[a]
}

// ParseAction converts a configuration string into an Action.
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if strings.EqualFold(s, name) {
			return Action(i), nil
		}
	}

	return ActionDiscard, errors.Errorf("unknown action: %q", s)
}

// PIDFElement is the placement hint for the location when a PIDF-LO body is
// built downstream: tuple, device or person.
type PIDFElement int

const (
	PIDFElementNone PIDFElement = iota
	PIDFElementTuple
	PIDFElementDevice
	PIDFElementPerson
)

var pidfElementNames = []string{"none", "tuple", "device", "person"}

func (p PIDFElement) String() string {
	if p < PIDFElementNone || p > PIDFElementPerson {
		return "<unknown>"
	}

	return pidfElementNames[p]
}

// ParsePIDFElement converts a configuration or document element name into a
// PIDFElement.
func ParsePIDFElement(s string) (PIDFElement, error) {
	for i, name := range pidfElementNames {
		if strings.EqualFold(s, name) {
			return PIDFElement(i), nil
		}
	}

	return PIDFElementNone, errors.Errorf("unknown pidf element: %q", s)
}
