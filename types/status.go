package types

// TestStatus represents the classification of a single test against a
// runner's captured output.
type TestStatus string

const (
	TestStatusPass TestStatus = "pass"
	TestStatusFail TestStatus = "fail"
	// TestStatusUnknown means neither the fail nor the pass pattern matched
	// the runner output.
	TestStatusUnknown TestStatus = "unknown"
)
