package transfer

import "sort"

// Fields is a caller-supplied field set keyed by column name. Values are the
// Go natives that map onto SQLite storage classes: string, int64, bool and
// nil. Typed accessors return ok=false when the key is absent or the value
// has the wrong dynamic type, mirroring how absent and malformed inputs are
// both treated as "not supplied".
type Fields map[string]any

// String returns the value for key if it is a string.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the value for key if it is integral. Plain ints are accepted
// so literal field sets read naturally in callers and tests.
func (f Fields) Int(key string) (int64, bool) {
	switch v := f[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// Bool returns the value for key if it is a bool.
func (f Fields) Bool(key string) (bool, bool) {
	v, ok := f[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Has reports whether key is present, regardless of type.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// SortedKeys returns the keys in ascending order. SQL built from a field set
// iterates in this order so statements are deterministic.
func (f Fields) SortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Row is one result row keyed by column name. Integer columns scan as int64,
// text as string, absent values as nil.
type Row map[string]any
