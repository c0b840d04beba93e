package domain

// Outcome tells a caller how a single paged or per-item crawl step ended.
type Outcome int

const (
	// OutcomeFound means the step produced data.
	OutcomeFound Outcome = iota
	// OutcomeEmpty means the source had nothing (no products, no more pages).
	OutcomeEmpty
	// OutcomeExhausted means the fetch retries ran out.
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeEmpty:
		return "empty"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}
