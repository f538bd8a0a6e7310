package entity

// Location is a named, persisted location record: a format tag and the raw
// location-info variable list. Instances handed out by the configuration
// store are treated as immutable; the engine clones before mutating.
type Location struct {
	ID           string  // Object id the profile's location_reference points at.
	Format       Format  // Selects the validator and builder path.
	Method       string  // How the location was determined (GPS, Manual, ...).
	LocationInfo VarList // Raw location description in the selected format.
}

// Clone returns an independent copy of the location.
func (l *Location) Clone() *Location {
	if l == nil {
		return nil
	}

	dup := *l
	dup.LocationInfo = l.LocationInfo.Clone()

	return &dup
}
