package domain

import "time"

// FilterSpec maps field names, optionally decorated with an operator suffix
// (e.g. "amount__gte"), to operand values. A value may be a scalar, a list,
// or nil meaning "unset". Several suffixed keys for one base field are legal
// at once and AND-combine (e.g. __gte plus __lt express a half-open range).
type FilterSpec map[string]interface{}

// SavedTransform is a persisted transform specification. Legacy rows carry
// only RawSQL (the emitted CASE text); the store reconstructs Spec from it
// on read.
type SavedTransform struct {
	ID        string
	Name      string
	Scope     Scope
	Spec      Transform
	RawSQL    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SavedFilter is a persisted filter specification bound to one widget.
type SavedFilter struct {
	ID        string
	WidgetID  string
	Spec      FilterSpec
	CreatedAt time.Time
}
