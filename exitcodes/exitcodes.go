// Package exitcodes defines the standard exit codes used by planter.
package exitcodes

// Exit code constants:
//
// * Success (0): generation/validation/run completed with no failures
// * Failure (1): validation errors or failing/unclassifiable tests
// * RuntimeErr (2): configuration, template or other runtime errors
const (
	Success    = 0
	Failure    = 1
	RuntimeErr = 2
)
