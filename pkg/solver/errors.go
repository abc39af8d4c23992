package solver

import "errors"

var (
	// ErrInvalidBracket means the supplied interval does not straddle a root.
	ErrInvalidBracket = errors.New("root is not bracketed")

	// ErrNoConvergence means the iteration budget ran out.
	ErrNoConvergence = errors.New("no convergence within iteration limit")

	// ErrInvalidOperatingPoint means the solved node voltage left the
	// supply rails, or the balance has no real solution.
	ErrInvalidOperatingPoint = errors.New("invalid operating point")
)
