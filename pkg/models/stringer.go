package models

// String methods for all custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// Ecosystem
func (e Ecosystem) String() string { return string(e) }

// DependencyScope
func (s DependencyScope) String() string { return string(s) }

// SmellKind
func (k SmellKind) String() string { return string(k) }

// Severity
func (s Severity) String() string { return string(s) }
