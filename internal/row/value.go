package row

// Value is a column value that may never have been assigned.
// The zero Value is unset, which is distinct from a set NULL (Of(nil)).
type Value struct {
	v   any
	set bool
}

// Unset returns a Value that was never assigned.
func Unset() Value { return Value{} }

// Of returns a set Value holding v. v may be nil for SQL NULL.
func Of(v any) Value { return Value{v: v, set: true} }

// IsSet reports whether the value was ever assigned.
func (v Value) IsSet() bool { return v.set }

// Get returns the held value and whether it is set.
func (v Value) Get() (any, bool) { return v.v, v.set }
