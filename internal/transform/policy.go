package transform

import "fmt"

// HeaderPolicy decides what happens to target fields missing from the input
// header.
type HeaderPolicy int

const (
	// HeaderAppend adds missing target fields after the input fields.
	HeaderAppend HeaderPolicy = iota
	// HeaderRequire rejects a header that lacks any target field.
	HeaderRequire
)

var headerPolicyNames = []string{"append", "require"}

func (p HeaderPolicy) String() string {
	if p >= 0 && int(p) < len(headerPolicyNames) {
		return headerPolicyNames[p]
	}
	return fmt.Sprintf("HeaderPolicy(%d)", int(p))
}

func ParseHeaderPolicy(s string) (HeaderPolicy, error) {
	for i, name := range headerPolicyNames {
		if s == name {
			return HeaderPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown header policy %q", s)
}

// ParsePolicy decides what happens when a source field holds a malformed
// address.
type ParsePolicy int

const (
	// ParseAbort fails the run before the offending record is written.
	ParseAbort ParsePolicy = iota
	// ParseSkipField leaves the target unset and writes the record.
	ParseSkipField
	// ParseSkipRecord drops the record.
	ParseSkipRecord
)

var parsePolicyNames = []string{"abort", "skip-field", "skip-record"}

func (p ParsePolicy) String() string {
	if p >= 0 && int(p) < len(parsePolicyNames) {
		return parsePolicyNames[p]
	}
	return fmt.Sprintf("ParsePolicy(%d)", int(p))
}

func ParseParsePolicy(s string) (ParsePolicy, error) {
	for i, name := range parsePolicyNames {
		if s == name {
			return ParsePolicy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown parse error policy %q", s)
}
