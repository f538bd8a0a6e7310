package entity

// Profile is a named, persisted policy describing how location data is
// gathered and combined for calls that use it. The referenced Location is
// resolved lazily by id so that edits to it are observable on refresh.
type Profile struct {
	ID                 string
	LocationReference  string      // Id of the Location this profile resolves.
	PIDFElement        PIDFElement // Placement hint for outgoing PIDF-LO bodies.
	Action             Action      // How this profile combines with other contributors.
	GeolocationRouting bool        // Whether routing decisions may use the location.
	SendLocation       bool        // Whether outgoing messages should carry the location.
	LocationRefinement VarList     // Overrides/additions applied on top of the Location.
	LocationVariables  VarList     // Named values usable as ${...} indirections.
	UsageRules         VarList     // PIDF-LO usage-rules entries, passed through.
	Notes              string      // Free-form operator notes.
}

// Clone returns an independent copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}

	dup := *p
	dup.LocationRefinement = p.LocationRefinement.Clone()
	dup.LocationVariables = p.LocationVariables.Clone()
	dup.UsageRules = p.UsageRules.Clone()

	return &dup
}
