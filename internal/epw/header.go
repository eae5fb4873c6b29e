package epw

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Section tags, matched as line prefixes. Every EPW file opens with exactly
// eight header lines, one per tag, except COMMENTS which appears twice
// ("COMMENTS 1" and "COMMENTS 2").
const (
	tagLocation                = "LOCATION"
	tagDesignConditions        = "DESIGN CONDITIONS"
	tagTypicalExtremePeriods   = "TYPICAL/EXTREME PERIODS"
	tagGroundTemperatures      = "GROUND TEMPERATURES"
	tagHolidaysDaylightSavings = "HOLIDAYS/DAYLIGHT SAVINGS"
	tagComments                = "COMMENTS"
	tagDataPeriods             = "DATA PERIODS"
)

const headerLineCount = 8

// Location holds the station metadata from the LOCATION header line.
// TimeZone is a fixed whole-hour UTC offset, not a geographic timezone
// database entry; it is computed purely from the numeric header field.
type Location struct {
	City      string
	Region    string
	Country   string
	Source    string
	WMO       string
	Latitude  float64
	Longitude float64
	TimeZone  *time.Location
	Elevation float64
}

func (l Location) String() string {
	return fmt.Sprintf("%v°,%v° [%s, %s | %s]", l.Latitude, l.Longitude, l.City, l.Region, l.Country)
}

// GroundTemperatureSample is one depth's worth of monthly mean ground
// temperatures. The soil properties are frequently absent from real files and
// stay nil when missing or unparseable.
type GroundTemperatureSample struct {
	Depth            float64
	SoilConductivity *float64
	SoilDensity      *float64
	SoilSpecificHeat *float64

	// Monthly mean temperatures, January through December.
	Monthly [12]float64
}

// PeriodKind distinguishes typical from extreme periods.
type PeriodKind int

const (
	PeriodTypical PeriodKind = iota
	PeriodExtreme
)

func (k PeriodKind) String() string {
	if k == PeriodExtreme {
		return "Extreme"
	}
	return "Typical"
}

// TypicalExtremePeriod is one entry from the TYPICAL/EXTREME PERIODS line.
// Start and End are kept as the raw "M/D" date strings from the file.
type TypicalExtremePeriod struct {
	Name  string
	Kind  PeriodKind
	Start string
	End   string
}

// Holiday is a named date from the HOLIDAYS/DAYLIGHT SAVINGS line.
type Holiday struct {
	Name string
	Date string
}

// HolidaysDaylightSavings carries the leap-year flag, the daylight savings
// day markers, and the holiday list.
type HolidaysDaylightSavings struct {
	LeapYear             bool
	DaylightSavingsStart string
	DaylightSavingsEnd   string
	Holidays             []Holiday
}

// DataPeriod describes one contiguous span of data records.
type DataPeriod struct {
	Name           string
	StartDayOfWeek time.Weekday
	StartDay       string
	EndDay         string
}

// DataPeriods holds the declared record density and the period list.
// RecordsPerHour is used as a capacity hint when reading the data block.
type DataPeriods struct {
	RecordsPerHour int
	Periods        []DataPeriod
}

// Header is the parsed 8-line EPW file header.
type Header struct {
	Location                Location
	DesignConditions        []string
	TypicalExtremePeriods   []TypicalExtremePeriod
	GroundTemperatures      []GroundTemperatureSample
	HolidaysDaylightSavings HolidaysDaylightSavings
	Comments                []string
	DataPeriods             DataPeriods
}

// headerBuilder accumulates section results while the eight header lines are
// dispatched. Pointer fields double as presence markers for the mandatory
// sections.
type headerBuilder struct {
	location         *Location
	designConditions []string
	typicalExtreme   []TypicalExtremePeriod
	groundTemps      []GroundTemperatureSample
	holidays         *HolidaysDaylightSavings
	comments         []string
	dataPeriods      *DataPeriods
}

// ParseHeader consumes exactly the first eight lines from the scanner and
// assembles the Header. Each line is classified by its leading section tag;
// a line matching no tag fails with KindUnexpectedHeaderLine, and a missing
// mandatory section fails with that section's error kind.
func ParseHeader(sc *bufio.Scanner) (*Header, error) {
	var b headerBuilder

	for i := 0; i < headerLineCount && sc.Scan(); i++ {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if err := dispatchHeaderLine(&b, line); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Kind: KindFileAccess, Detail: err.Error(), Err: err}
	}

	return b.build()
}

// dispatchHeaderLine routes one header line to its section parser.
// The tag set is closed; extending it means adding both a case here and a
// presence check in headerBuilder.build.
func dispatchHeaderLine(b *headerBuilder, line string) error {
	switch {
	case strings.HasPrefix(line, tagLocation):
		loc, err := parseLocation(line)
		if err != nil {
			return err
		}
		b.location = &loc
	case strings.HasPrefix(line, tagDesignConditions):
		b.designConditions = parseDesignConditions(line)
	case strings.HasPrefix(line, tagTypicalExtremePeriods):
		periods, err := parseTypicalExtremePeriods(line)
		if err != nil {
			return err
		}
		b.typicalExtreme = periods
	case strings.HasPrefix(line, tagGroundTemperatures):
		samples, err := parseGroundTemperatures(line)
		if err != nil {
			return err
		}
		b.groundTemps = samples
	case strings.HasPrefix(line, tagHolidaysDaylightSavings):
		hds, err := parseHolidaysDaylightSavings(line)
		if err != nil {
			return err
		}
		b.holidays = &hds
	case strings.HasPrefix(line, tagComments):
		b.comments = append(b.comments, parseComment(line))
	case strings.HasPrefix(line, tagDataPeriods):
		dp, err := parseDataPeriods(line)
		if err != nil {
			return err
		}
		b.dataPeriods = &dp
	default:
		return parseErrorf(KindUnexpectedHeaderLine, "unexpected row: %s", line)
	}
	return nil
}

// build verifies that every mandatory section appeared and assembles the
// Header. DesignConditions and Comments are the only optional sections.
func (b *headerBuilder) build() (*Header, error) {
	if b.location == nil {
		return nil, parseErrorf(KindLocation, "no location found")
	}
	if b.groundTemps == nil {
		return nil, parseErrorf(KindGroundTemperatures, "no ground temperatures found")
	}
	if b.holidays == nil {
		return nil, parseErrorf(KindHolidaysDaylightSavings, "no holidays/daylight savings found")
	}
	if b.dataPeriods == nil {
		return nil, parseErrorf(KindDataPeriods, "no data periods found")
	}
	if b.typicalExtreme == nil {
		return nil, parseErrorf(KindTypicalExtremePeriods, "no typical/extreme periods found")
	}

	return &Header{
		Location:                *b.location,
		DesignConditions:        b.designConditions,
		TypicalExtremePeriods:   b.typicalExtreme,
		GroundTemperatures:      b.groundTemps,
		HolidaysDaylightSavings: *b.holidays,
		Comments:                b.comments,
		DataPeriods:             *b.dataPeriods,
	}, nil
}

// mustHaveTag asserts the dispatch invariant: section parsers are only ever
// invoked on lines carrying their own tag. Reaching the panic means a bug in
// dispatchHeaderLine, not bad input.
func mustHaveTag(line, tag string) {
	if !strings.HasPrefix(line, tag) {
		panic(fmt.Sprintf("epw: section parser for %q invoked on line %q", tag, line))
	}
}

func parseLocation(line string) (Location, error) {
	mustHaveTag(line, tagLocation)

	parts := strings.Split(line, ",")
	if len(parts) != 10 {
		return Location{}, parseErrorf(KindLocation, "invalid location line: %s", line)
	}

	latitude, err := strconv.ParseFloat(parts[6], 64)
	if err != nil {
		return Location{}, parseErrorf(KindLocation, "invalid latitude: %q", parts[6])
	}
	longitude, err := strconv.ParseFloat(parts[7], 64)
	if err != nil {
		return Location{}, parseErrorf(KindLocation, "invalid longitude: %q", parts[7])
	}
	tz, err := parseTimeZone(parts[8])
	if err != nil {
		return Location{}, err
	}
	elevation, err := strconv.ParseFloat(parts[9], 64)
	if err != nil {
		return Location{}, parseErrorf(KindLocation, "invalid elevation: %q", parts[9])
	}

	return Location{
		City:      parts[1],
		Region:    parts[2],
		Country:   parts[3],
		Source:    parts[4],
		WMO:       parts[5],
		Latitude:  latitude,
		Longitude: longitude,
		TimeZone:  tz,
		Elevation: elevation,
	}, nil
}

// parseTimeZone converts the numeric UTC-offset header field into a fixed
// zone. The field is declared in hours and may carry a fractional part, but
// only the whole hour is used. Offsets at or beyond a full day are invalid.
func parseTimeZone(field string) (*time.Location, error) {
	hours, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return nil, parseErrorf(KindLocation, "invalid time zone: %q", field)
	}
	offset := int(hours) * 3600
	if offset <= -24*3600 || offset >= 24*3600 {
		return nil, parseErrorf(KindLocation, "invalid time zone: %q", field)
	}
	return time.FixedZone(fmt.Sprintf("UTC%+03d:00", int(hours)), offset), nil
}

func parseDesignConditions(line string) []string {
	mustHaveTag(line, tagDesignConditions)
	return strings.Split(line, ",")[1:]
}

func parseComment(line string) string {
	mustHaveTag(line, tagComments)
	parts := strings.SplitN(line, ",", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// groundTemperatureFieldCount is the per-sample chunk width: depth, three
// soil properties, and twelve monthly means.
const groundTemperatureFieldCount = 16

func parseGroundTemperatures(line string) ([]GroundTemperatureSample, error) {
	mustHaveTag(line, tagGroundTemperatures)

	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return nil, parseErrorf(KindGroundTemperatures, "invalid ground temperatures line: %s", line)
	}
	sampleCount, err := strconv.Atoi(parts[1])
	if err != nil || sampleCount < 0 {
		return nil, parseErrorf(KindGroundTemperatures, "invalid sample count: %q", parts[1])
	}

	samples := make([]GroundTemperatureSample, 0, sampleCount)
	rest := parts[2:]
	for idx := 0; idx < sampleCount; idx++ {
		if len(rest) < groundTemperatureFieldCount {
			return nil, parseErrorf(KindGroundTemperatures,
				"not enough data for sample at index %d: %s", idx, strings.Join(rest, ","))
		}

		var sample GroundTemperatureSample
		sample.Depth, err = strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return nil, parseErrorf(KindGroundTemperatures,
				"invalid depth at index %d: %q", idx, rest[0])
		}

		// Soil properties are optional: absent or unparseable values stay nil.
		sample.SoilConductivity = optionalFloat(rest[1])
		sample.SoilDensity = optionalFloat(rest[2])
		sample.SoilSpecificHeat = optionalFloat(rest[3])

		for m := 0; m < 12; m++ {
			sample.Monthly[m], err = strconv.ParseFloat(rest[4+m], 64)
			if err != nil {
				return nil, parseErrorf(KindGroundTemperatures,
					"invalid %s temperature at index %d: %q", time.Month(m+1), idx, rest[4+m])
			}
		}

		samples = append(samples, sample)
		rest = rest[groundTemperatureFieldCount:]
	}
	return samples, nil
}

func optionalFloat(field string) *float64 {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return nil
	}
	return &v
}

var weekdaysByName = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

func parseDataPeriods(line string) (DataPeriods, error) {
	mustHaveTag(line, tagDataPeriods)

	parts := strings.Split(line, ",")
	if len(parts) < 3 {
		return DataPeriods{}, parseErrorf(KindDataPeriods, "invalid data periods line: %s", line)
	}
	periodCount, err := strconv.Atoi(parts[1])
	if err != nil || periodCount < 0 {
		return DataPeriods{}, parseErrorf(KindDataPeriods, "invalid period count: %q", parts[1])
	}
	recordsPerHour, err := strconv.Atoi(parts[2])
	if err != nil || recordsPerHour < 0 {
		return DataPeriods{}, parseErrorf(KindDataPeriods, "invalid records per hour: %q", parts[2])
	}

	periods := make([]DataPeriod, 0, periodCount)
	rest := parts[3:]
	for idx := 0; idx < periodCount; idx++ {
		if len(rest) < 4 {
			return DataPeriods{}, parseErrorf(KindDataPeriods,
				"not enough data for period at index %d: %s", idx, strings.Join(rest, ","))
		}

		// Weekday names are matched case-sensitively per the format.
		weekday, ok := weekdaysByName[rest[1]]
		if !ok {
			return DataPeriods{}, parseErrorf(KindDataPeriods,
				"invalid day of week at index %d: %q", idx, rest[1])
		}

		periods = append(periods, DataPeriod{
			Name:           rest[0],
			StartDayOfWeek: weekday,
			StartDay:       rest[2],
			EndDay:         rest[3],
		})
		rest = rest[4:]
	}
	return DataPeriods{RecordsPerHour: recordsPerHour, Periods: periods}, nil
}

func parseTypicalExtremePeriods(line string) ([]TypicalExtremePeriod, error) {
	mustHaveTag(line, tagTypicalExtremePeriods)

	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return nil, parseErrorf(KindTypicalExtremePeriods, "invalid typical/extreme periods line: %s", line)
	}
	periodCount, err := strconv.Atoi(parts[1])
	if err != nil || periodCount < 0 {
		return nil, parseErrorf(KindTypicalExtremePeriods, "invalid period count: %q", parts[1])
	}

	periods := make([]TypicalExtremePeriod, 0, periodCount)
	rest := parts[2:]
	for idx := 0; idx < periodCount; idx++ {
		if len(rest) < 4 {
			return nil, parseErrorf(KindTypicalExtremePeriods,
				"not enough data for period at index %d: %s", idx, strings.Join(rest, ","))
		}

		var kind PeriodKind
		switch rest[1] {
		case "Typical":
			kind = PeriodTypical
		case "Extreme":
			kind = PeriodExtreme
		default:
			return nil, parseErrorf(KindTypicalExtremePeriods,
				"invalid period type at index %d: %q", idx, rest[1])
		}

		periods = append(periods, TypicalExtremePeriod{
			Name:  rest[0],
			Kind:  kind,
			Start: rest[2],
			End:   rest[3],
		})
		rest = rest[4:]
	}
	return periods, nil
}

func parseHolidaysDaylightSavings(line string) (HolidaysDaylightSavings, error) {
	mustHaveTag(line, tagHolidaysDaylightSavings)

	parts := strings.Split(line, ",")
	if len(parts) < 5 {
		return HolidaysDaylightSavings{}, parseErrorf(KindHolidaysDaylightSavings,
			"invalid holidays/daylight savings line: %s", line)
	}

	var leapYear bool
	switch parts[1] {
	case "Yes":
		leapYear = true
	case "No":
		leapYear = false
	default:
		return HolidaysDaylightSavings{}, parseErrorf(KindHolidaysDaylightSavings,
			"invalid leap year value: %q", parts[1])
	}

	holidayCount, err := strconv.Atoi(parts[4])
	if err != nil || holidayCount < 0 {
		return HolidaysDaylightSavings{}, parseErrorf(KindHolidaysDaylightSavings,
			"invalid holiday count: %q", parts[4])
	}

	holidays := make([]Holiday, 0, holidayCount)
	rest := parts[5:]
	for idx := 0; idx < holidayCount; idx++ {
		if len(rest) < 2 {
			return HolidaysDaylightSavings{}, parseErrorf(KindHolidaysDaylightSavings,
				"not enough data for holiday at index %d: %s", idx, strings.Join(rest, ","))
		}
		holidays = append(holidays, Holiday{Name: rest[0], Date: rest[1]})
		rest = rest[2:]
	}

	return HolidaysDaylightSavings{
		LeapYear:             leapYear,
		DaylightSavingsStart: parts[2],
		DaylightSavingsEnd:   parts[3],
		Holidays:             holidays,
	}, nil
}
