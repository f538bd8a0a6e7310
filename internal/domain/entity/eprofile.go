package entity

import (
	"github.com/pkg/errors"
)

// EProfile is an effective profile: the fully resolved, call-scoped result of
// merging a configured Profile (or an inbound PIDF-LO/URI payload) with its
// Location. It is a value snapshot; it keeps no reference to the objects it
// was built from beyond the LocationReference id used by Refresh.
type EProfile struct {
	ID                 string
	LocationReference  string
	Method             string
	LocationSource     string // loc-src parameter from the Geolocation URI, if any.
	PIDFElement        PIDFElement
	Action             Action
	GeolocationRouting bool
	SendLocation       bool
	Format             Format
	LocationInfo       VarList // Pre-merge source data.
	LocationRefinement VarList
	LocationVariables  VarList
	EffectiveLocation  VarList // Post-merge result consumers act on.
	UsageRules         VarList
	Notes              string
}

// Clone returns an independent copy of the effective profile.
func (e *EProfile) Clone() *EProfile {
	if e == nil {
		return nil
	}

	dup := *e
	dup.LocationInfo = e.LocationInfo.Clone()
	dup.LocationRefinement = e.LocationRefinement.Clone()
	dup.LocationVariables = e.LocationVariables.Clone()
	dup.EffectiveLocation = e.EffectiveLocation.Clone()
	dup.UsageRules = e.UsageRules.Clone()

	return &dup
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

// FieldValue returns the named field rendered as a string, for diagnostic
// surfaces that address effective profile fields by name.
func (e *EProfile) FieldValue(field string) (string, error) {
	switch field {
	case "id":
		return e.ID, nil
	case "location_reference":
		return e.LocationReference, nil
	case "method":
		return e.Method, nil
	case "location_source":
		return e.LocationSource, nil
	case "geolocation_routing":
		return yesNo(e.GeolocationRouting), nil
	case "send_location":
		return yesNo(e.SendLocation), nil
	case "action":
		return e.Action.String(), nil
	case "format":
		return e.Format.String(), nil
	case "pidf_element":
		return e.PIDFElement.String(), nil
	case "location_info":
		return e.LocationInfo.Join(",", "=", `"`), nil
	case "location_refinement":
		return e.LocationRefinement.Join(",", "=", `"`), nil
	case "location_variables":
		return e.LocationVariables.Join(",", "=", `"`), nil
	case "effective_location":
		return e.EffectiveLocation.Join(",", "=", `"`), nil
	case "usage_rules":
		return e.UsageRules.Join(",", "=", `"`), nil
	case "notes":
		return e.Notes, nil
	default:
		return "", errors.Errorf("field %q is not valid", field)
	}
}
