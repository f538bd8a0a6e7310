package callstore

// Leg is the keyed-state contract a call-leg abstraction provides.
// Attached values live until the leg's state is torn down; the leg layer
// consults Inheritable when it forks or bridges.
type Leg interface {
	AttachData(key string, value any)
	FindData(key string) (any, bool)
}

const legDataKey = "geolocation"

// Attach attaches the store to the leg, replacing any previous one.
func Attach(leg Leg, store *Store) error {
	if leg == nil {
		return ErrInvalidStore
	}
	if store == nil {
		return ErrInvalidStore
	}

	leg.AttachData(legDataKey, store)

	return nil
}

// Find locates the store attached to the leg. A missing attachment is
// ErrNotFound; an attachment of the wrong type is ErrInvalidStore.
func Find(leg Leg) (*Store, error) {
	if leg == nil {
		return nil, ErrInvalidStore
	}

	value, ok := leg.FindData(legDataKey)
	if !ok {
		return nil, ErrNotFound
	}

	store, ok := value.(*Store)
	if !ok || store == nil {
		return nil, ErrInvalidStore
	}

	return store, nil
}
