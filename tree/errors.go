package tree

import "fmt"

// ArgumentError signals an invalid construction-time parameter: a
// malformed box size, a zero max_leaf_n/ncrit, or mismatched input
// slice lengths.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string { return "argument error: " + e.Message }

func newArgumentError(format string, args ...any) error {
	return &ArgumentError{Message: fmt.Sprintf(format, args...)}
}

// DiscretisationError signals that a particle coordinate could not be
// mapped onto the integer grid: it lies outside the box, or the
// mapping itself produced a non-finite value.
type DiscretisationError struct {
	Message string
}

func (e *DiscretisationError) Error() string { return "discretisation error: " + e.Message }

func newDiscretisationError(format string, args ...any) error {
	return &DiscretisationError{Message: fmt.Sprintf(format, args...)}
}

// DomainError signals an invalid query-time parameter: a non-positive
// opening angle, negative softening, or an out-of-range particle
// index.
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string { return "domain error: " + e.Message }

func newDomainError(format string, args ...any) error {
	return &DomainError{Message: fmt.Sprintf(format, args...)}
}
