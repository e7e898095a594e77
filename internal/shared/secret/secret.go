// Package secret holds a small wrapper that keeps sensitive strings out of
// logs, error messages, and JSON bodies by construction.
package secret

// String wraps a sensitive value so that accidental formatting (fmt, zap,
// encoding/json) never exposes it. Expose is the one sanctioned accessor.
type String struct {
	value string
}

// New wraps a plain string as a secret.
func New(value string) String {
	return String{value: value}
}

// Expose returns the underlying value. Callers must not log or persist it.
func (s String) Expose() string {
	return s.value
}

// String implements fmt.Stringer, always redacting.
func (s String) String() string {
	return "[redacted]"
}

// MarshalJSON implements json.Marshaler, always redacting.
func (s String) MarshalJSON() ([]byte, error) {
	return []byte(`"[redacted]"`), nil
}
