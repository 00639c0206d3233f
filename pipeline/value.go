package pipeline

// Value is a dynamically typed simulation parameter. The two concrete kinds
// are Bool (on/off toggles) and Number (0-100 slider dials).
type Value interface {
	isValue()
}

// Bool is an on/off parameter value.
type Bool bool

// Number is a numeric parameter value.
type Number float64

func (Bool) isValue()   {}
func (Number) isValue() {}

// ValueMap is the externally supplied set of named simulation parameters.
// It is replaced wholesale when parameters change and is never mutated by a
// pass; passes only read from it.
type ValueMap map[string]Value

// Bool returns the named parameter if it is present and of kind Bool.
func (m ValueMap) Bool(name string) (bool, bool) {
	if v, ok := m[name].(Bool); ok {
		return bool(v), true
	}
	return false, false
}

// Number returns the named parameter if it is present and of kind Number.
func (m ValueMap) Number(name string) (float64, bool) {
	if v, ok := m[name].(Number); ok {
		return float64(v), true
	}
	return 0, false
}
