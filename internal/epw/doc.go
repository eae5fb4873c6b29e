// Package epw parses EnergyPlus Weather (EPW) files.
//
// # File layout
//
// An EPW file is plain comma-delimited text: a fixed 8-line header followed
// by an arbitrarily long block of hourly (or sub-hourly) data rows. Fields
// are split naively on "," — the format has no quoting or escaping, so a
// literal comma inside a free-text field (e.g. a comment) is not
// representable.
//
// The eight header lines each open with a literal section tag:
//
//	LOCATION,TAMPA,FL,USA,TMY2-12842,722110,27.97,-82.53,-5.0,11.0
//	DESIGN CONDITIONS,...
//	TYPICAL/EXTREME PERIODS,6,Summer - Week Nearest Max Temperature For Period,Extreme,7/ 6,7/12,...
//	GROUND TEMPERATURES,3,.5,,,,16.22,17.29,19.37,21.34,25.08,27.04,...
//	HOLIDAYS/DAYLIGHT SAVINGS,No,0,0,0
//	COMMENTS 1,...
//	COMMENTS 2,...
//	DATA PERIODS,1,1,Data,Sunday, 1/ 1,12/31
//
// Lines may arrive in any order, but LOCATION, GROUND TEMPERATURES,
// HOLIDAYS/DAYLIGHT SAVINGS, DATA PERIODS and TYPICAL/EXTREME PERIODS are all
// mandatory. COMMENTS appears once per comment line; DESIGN CONDITIONS is
// optional free text.
//
// # Data row conventions
//
// Each data row carries at least 32 fields; files in the current revision of
// the format carry 35, adding albedo and two liquid precipitation columns.
//
// Missing values are encoded in-band as per-field magic numbers (999, 9999,
// 99.9, ...) inherited from TMY2. Decoding maps each documented sentinel to
// NaN by exact equality, except the three illuminance columns where any
// value of 999900 or greater means missing. NaN is reserved strictly for
// sentinels: a field that fails to parse is an error, not a missing value.
//
// Hours are numbered 1-24, denoting the hour the record closes; the stored
// local hour is the parsed value minus one. A minute field of 60 is recorded
// as 0 with no hour carry — calendar-inconsistent, but the literal behavior
// of the format that downstream consumers rely on.
//
// The present weather column packs nine single-digit categorical codes
// (thunderstorm, rain, rain squalls, snow, snow showers, sleet, fog, smoke,
// ice pellets) into a 9-character string; 9 means "none/unknown".
//
// Timestamps resolve against the LOCATION line's UTC offset, a fixed
// whole-hour shift with no daylight savings rules, so local-time resolution
// is unambiguous whenever the calendar components themselves are valid.
//
// Format reference: https://designbuilder.co.uk/cahelp/Content/EnergyPlusWeatherFileFormat.htm
package epw
