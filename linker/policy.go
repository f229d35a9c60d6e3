package linker

import "fmt"

// Policy decides what happens to imports from namespaces the host does not
// recognize.
type Policy string

const (
	// PolicyPermissive leaves unrecognized imports unresolved. They are bound
	// to trap stubs at instantiation and fail only if called.
	PolicyPermissive Policy = "permissive"
	// PolicyStrict fails resolution on the first unrecognized import.
	PolicyStrict Policy = "strict"
)

// ParsePolicy parses a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyPermissive, PolicyStrict:
		return p, nil
	default:
		return "", fmt.Errorf("unknown import policy %q (want %q or %q)", s, PolicyStrict, PolicyPermissive)
	}
}

// Options configures linker behavior.
type Options struct {
	Policy Policy
}

// DefaultOptions returns default linker configuration.
func DefaultOptions() Options {
	return Options{
		Policy: PolicyPermissive,
	}
}
