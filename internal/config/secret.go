package config

import "log/slog"

// Secret holds a credential value (connection string, client secret) that
// must never reach logs or serialized output. Every formatting path renders
// a placeholder; callers get the real value only through Reveal.
type Secret string

const redacted = "[redacted]"

// Reveal returns the underlying credential value.
func (s Secret) Reveal() string { return string(s) }

// IsZero reports whether no value was configured.
func (s Secret) IsZero() bool { return s == "" }

func (s Secret) String() string   { return redacted }
func (s Secret) GoString() string { return redacted }

// MarshalJSON keeps the value out of any serialized form.
func (s Secret) MarshalJSON() ([]byte, error) { return []byte(`"` + redacted + `"`), nil }

// LogValue keeps the value out of slog output.
func (s Secret) LogValue() slog.Value { return slog.StringValue(redacted) }
