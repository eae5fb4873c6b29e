package epw

import "fmt"

// Kind classifies a parse failure by the part of the file it belongs to.
type Kind int

const (
	// KindFileAccess means the underlying file could not be opened or read.
	KindFileAccess Kind = iota
	// KindUnexpectedHeaderLine means a header row matched no known section tag.
	KindUnexpectedHeaderLine
	// KindLocation covers a malformed or missing LOCATION section.
	KindLocation
	// KindGroundTemperatures covers a malformed or missing GROUND TEMPERATURES section.
	KindGroundTemperatures
	// KindHolidaysDaylightSavings covers a malformed or missing HOLIDAYS/DAYLIGHT SAVINGS section.
	KindHolidaysDaylightSavings
	// KindDataPeriods covers a malformed or missing DATA PERIODS section.
	KindDataPeriods
	// KindTypicalExtremePeriods covers a malformed or missing TYPICAL/EXTREME PERIODS section.
	KindTypicalExtremePeriods
	// KindDataRow covers a malformed data line, a missing or invalid field,
	// or an unresolvable timestamp.
	KindDataRow
)

func (k Kind) String() string {
	switch k {
	case KindFileAccess:
		return "file access"
	case KindUnexpectedHeaderLine:
		return "unexpected header line"
	case KindLocation:
		return "location"
	case KindGroundTemperatures:
		return "ground temperatures"
	case KindHolidaysDaylightSavings:
		return "holidays/daylight savings"
	case KindDataPeriods:
		return "data periods"
	case KindTypicalExtremePeriods:
		return "typical/extreme periods"
	case KindDataRow:
		return "data row"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseError is the error type returned by every parsing entry point.
// Kind identifies which section or row failed; Detail names the offending
// field and carries the raw text that failed to decode.
type ParseError struct {
	Kind   Kind
	Detail string
	Err    error // underlying cause, set for KindFileAccess
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("epw: %s: %s", e.Kind, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(kind Kind, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
