// Package domain models the events flowing through the EPW ingest pipeline.
//
// # Data Source
//
// EnergyPlus Weather (EPW) files arrive in a spool directory, typically synced
// from simulation teams or downloaded station archives. Each file holds one
// station-year (or multi-period) of hourly observations; the parsing rules
// live in the epw package.
//
// # Event Shape
//
// A [RawFile] is a spooled file awaiting processing. The transformer parses it
// and flattens every decoded row into a [RecordEvent]: station metadata from
// the file header plus the row's weather columns in snake_case JSON. The
// packed present-weather code is expanded into nine present_* fields so
// consumers never re-decode the 9-character string.
//
// Missing values:
//
//	The parser encodes the format's in-band missing sentinels (999, 9999,
//	99.9, ...) as NaN. NaN is not representable in JSON, so RecordEvent uses
//	pointer fields and maps NaN to nil, which omitempty then drops entirely.
//
// Message keys:
//
//	"<wmo>-<unix timestamp>", e.g. "722110-536475600". Stable per station and
//	record time, so replaying a spool file produces identical keys and
//	log-compacted consumers deduplicate for free.
//
// ProcessedAt is stamped from the package clock; tests freeze it via
// [SetClock].
package domain
