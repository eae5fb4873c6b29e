package epw

import (
	"bufio"
	"math"
	"strconv"
	"strings"
	"time"
)

// hoursPerYear sizes the column capacity hint together with the header's
// declared records-per-hour.
const hoursPerYear = 8760

// minDataRowFields is the mandatory field count of a data row. Albedo and the
// two liquid precipitation columns trail it and are structurally optional.
const minDataRowFields = 32

// WeatherData is the column-oriented weather table. All slices are the same
// length at all times: a row is decoded and validated in full before it is
// committed to any column. Numeric columns use NaN for the format's
// documented missing-value sentinels.
type WeatherData struct {
	Timestamp []time.Time

	// Data source and validity flags, format undocumented, kept verbatim.
	Flags []string

	DryBulbTemperature                    []float64 // °C
	DewPointTemperature                   []float64 // °C
	RelativeHumidity                      []float64 // %
	AtmosphericPressure                   []float64 // Pa
	ExtraterrestrialHorizontalRadiation   []float64 // Wh/m²
	ExtraterrestrialDirectNormalRadiation []float64 // Wh/m²
	HorizontalInfraredRadiationIntensity  []float64 // Wh/m²
	GlobalHorizontalRadiation             []float64 // Wh/m²
	DirectNormalRadiation                 []float64 // Wh/m²
	DiffuseHorizontalRadiation            []float64 // Wh/m²
	GlobalHorizontalIlluminance           []float64 // lux
	DirectNormalIlluminance               []float64 // lux
	DiffuseHorizontalIlluminance          []float64 // lux
	ZenithLuminance                       []float64 // cd/m²
	WindDirection                         []float64 // degrees
	WindSpeed                             []float64 // m/s
	TotalSkyCover                         []float64
	OpaqueSkyCover                        []float64
	Visibility                            []float64 // km
	CeilingHeight                         []float64 // m
	PresentWeatherObservation             []bool
	PresentWeatherCodes                   []PresentWeather
	PrecipitableWater                     []float64 // mm
	AerosolOpticalDepth                   []float64
	SnowDepth                             []float64 // cm
	DaysSinceLastSnowfall                 []float64

	// Only present in files carrying 33 or more fields per row; NaN when the
	// column is structurally absent.
	Albedo                      []float64
	LiquidPrecipitationDepth    []float64 // mm
	LiquidPrecipitationQuantity []float64 // hr
}

// Len returns the number of decoded rows.
func (d *WeatherData) Len() int { return len(d.Timestamp) }

func newWeatherData(capacity int) *WeatherData {
	return &WeatherData{
		Timestamp:                             make([]time.Time, 0, capacity),
		Flags:                                 make([]string, 0, capacity),
		DryBulbTemperature:                    make([]float64, 0, capacity),
		DewPointTemperature:                   make([]float64, 0, capacity),
		RelativeHumidity:                      make([]float64, 0, capacity),
		AtmosphericPressure:                   make([]float64, 0, capacity),
		ExtraterrestrialHorizontalRadiation:   make([]float64, 0, capacity),
		ExtraterrestrialDirectNormalRadiation: make([]float64, 0, capacity),
		HorizontalInfraredRadiationIntensity:  make([]float64, 0, capacity),
		GlobalHorizontalRadiation:             make([]float64, 0, capacity),
		DirectNormalRadiation:                 make([]float64, 0, capacity),
		DiffuseHorizontalRadiation:            make([]float64, 0, capacity),
		GlobalHorizontalIlluminance:           make([]float64, 0, capacity),
		DirectNormalIlluminance:               make([]float64, 0, capacity),
		DiffuseHorizontalIlluminance:          make([]float64, 0, capacity),
		ZenithLuminance:                       make([]float64, 0, capacity),
		WindDirection:                         make([]float64, 0, capacity),
		WindSpeed:                             make([]float64, 0, capacity),
		TotalSkyCover:                         make([]float64, 0, capacity),
		OpaqueSkyCover:                        make([]float64, 0, capacity),
		Visibility:                            make([]float64, 0, capacity),
		CeilingHeight:                         make([]float64, 0, capacity),
		PresentWeatherObservation:             make([]bool, 0, capacity),
		PresentWeatherCodes:                   make([]PresentWeather, 0, capacity),
		PrecipitableWater:                     make([]float64, 0, capacity),
		AerosolOpticalDepth:                   make([]float64, 0, capacity),
		SnowDepth:                             make([]float64, 0, capacity),
		DaysSinceLastSnowfall:                 make([]float64, 0, capacity),
		Albedo:                                make([]float64, 0, capacity),
		LiquidPrecipitationDepth:              make([]float64, 0, capacity),
		LiquidPrecipitationQuantity:           make([]float64, 0, capacity),
	}
}

// record is one fully decoded data row, staged before the atomic append so a
// mid-row failure can never skew column lengths.
type record struct {
	timestamp                             time.Time
	flags                                 string
	dryBulbTemperature                    float64
	dewPointTemperature                   float64
	relativeHumidity                      float64
	atmosphericPressure                   float64
	extraterrestrialHorizontalRadiation   float64
	extraterrestrialDirectNormalRadiation float64
	horizontalInfraredRadiationIntensity  float64
	globalHorizontalRadiation             float64
	directNormalRadiation                 float64
	diffuseHorizontalRadiation            float64
	globalHorizontalIlluminance           float64
	directNormalIlluminance               float64
	diffuseHorizontalIlluminance          float64
	zenithLuminance                       float64
	windDirection                         float64
	windSpeed                             float64
	totalSkyCover                         float64
	opaqueSkyCover                        float64
	visibility                            float64
	ceilingHeight                         float64
	presentWeatherObservation             bool
	presentWeatherCodes                   PresentWeather
	precipitableWater                     float64
	aerosolOpticalDepth                   float64
	snowDepth                             float64
	daysSinceLastSnowfall                 float64
	albedo                                float64
	liquidPrecipitationDepth              float64
	liquidPrecipitationQuantity           float64
}

// append commits one staged record to every column.
func (d *WeatherData) append(r *record) {
	d.Timestamp = append(d.Timestamp, r.timestamp)
	d.Flags = append(d.Flags, r.flags)
	d.DryBulbTemperature = append(d.DryBulbTemperature, r.dryBulbTemperature)
	d.DewPointTemperature = append(d.DewPointTemperature, r.dewPointTemperature)
	d.RelativeHumidity = append(d.RelativeHumidity, r.relativeHumidity)
	d.AtmosphericPressure = append(d.AtmosphericPressure, r.atmosphericPressure)
	d.ExtraterrestrialHorizontalRadiation = append(d.ExtraterrestrialHorizontalRadiation, r.extraterrestrialHorizontalRadiation)
	d.ExtraterrestrialDirectNormalRadiation = append(d.ExtraterrestrialDirectNormalRadiation, r.extraterrestrialDirectNormalRadiation)
	d.HorizontalInfraredRadiationIntensity = append(d.HorizontalInfraredRadiationIntensity, r.horizontalInfraredRadiationIntensity)
	d.GlobalHorizontalRadiation = append(d.GlobalHorizontalRadiation, r.globalHorizontalRadiation)
	d.DirectNormalRadiation = append(d.DirectNormalRadiation, r.directNormalRadiation)
	d.DiffuseHorizontalRadiation = append(d.DiffuseHorizontalRadiation, r.diffuseHorizontalRadiation)
	d.GlobalHorizontalIlluminance = append(d.GlobalHorizontalIlluminance, r.globalHorizontalIlluminance)
	d.DirectNormalIlluminance = append(d.DirectNormalIlluminance, r.directNormalIlluminance)
	d.DiffuseHorizontalIlluminance = append(d.DiffuseHorizontalIlluminance, r.diffuseHorizontalIlluminance)
	d.ZenithLuminance = append(d.ZenithLuminance, r.zenithLuminance)
	d.WindDirection = append(d.WindDirection, r.windDirection)
	d.WindSpeed = append(d.WindSpeed, r.windSpeed)
	d.TotalSkyCover = append(d.TotalSkyCover, r.totalSkyCover)
	d.OpaqueSkyCover = append(d.OpaqueSkyCover, r.opaqueSkyCover)
	d.Visibility = append(d.Visibility, r.visibility)
	d.CeilingHeight = append(d.CeilingHeight, r.ceilingHeight)
	d.PresentWeatherObservation = append(d.PresentWeatherObservation, r.presentWeatherObservation)
	d.PresentWeatherCodes = append(d.PresentWeatherCodes, r.presentWeatherCodes)
	d.PrecipitableWater = append(d.PrecipitableWater, r.precipitableWater)
	d.AerosolOpticalDepth = append(d.AerosolOpticalDepth, r.aerosolOpticalDepth)
	d.SnowDepth = append(d.SnowDepth, r.snowDepth)
	d.DaysSinceLastSnowfall = append(d.DaysSinceLastSnowfall, r.daysSinceLastSnowfall)
	d.Albedo = append(d.Albedo, r.albedo)
	d.LiquidPrecipitationDepth = append(d.LiquidPrecipitationDepth, r.liquidPrecipitationDepth)
	d.LiquidPrecipitationQuantity = append(d.LiquidPrecipitationQuantity, r.liquidPrecipitationQuantity)
}

// ParseData consumes every remaining line on the scanner as a data row and
// returns the assembled table. The parse is all-or-nothing: the first bad row
// fails the whole operation and no partial table is returned.
func ParseData(sc *bufio.Scanner, header *Header) (*WeatherData, error) {
	// The declared density is only a capacity hint. Parsed headers reject a
	// negative records-per-hour, but a hand-built one may still carry it.
	capacity := hoursPerYear * header.DataPeriods.RecordsPerHour
	if capacity < 0 {
		capacity = 0
	}
	data := newWeatherData(capacity)

	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		rec, err := parseRow(line, header.Location.TimeZone)
		if err != nil {
			return nil, err
		}
		data.append(rec)
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Kind: KindFileAccess, Detail: err.Error(), Err: err}
	}

	return data, nil
}

// parseRow decodes one comma-separated data line into a staged record.
//
// The format's hour field runs 1-24, so the stored local hour is the parsed
// value minus one. A minute of 60 is normalized to 0 without carrying into
// the hour; the source format relies on the hour already meaning "the hour
// this record closes", and downstream consumers depend on the literal
// behavior.
func parseRow(line string, tz *time.Location) (*record, error) {
	parts := strings.Split(line, ",")
	if len(parts) < minDataRowFields {
		return nil, parseErrorf(KindDataRow, "invalid data row: %s", line)
	}

	year, err := intField(parts[0], "year")
	if err != nil {
		return nil, err
	}
	month, err := intField(parts[1], "month")
	if err != nil {
		return nil, err
	}
	day, err := intField(parts[2], "day")
	if err != nil {
		return nil, err
	}
	hour, err := intField(parts[3], "hour")
	if err != nil {
		return nil, err
	}
	minute, err := intField(parts[4], "minute")
	if err != nil {
		return nil, err
	}

	timestamp, err := resolveTimestamp(year, month, day, hour, minute, tz)
	if err != nil {
		return nil, err
	}

	rec := &record{
		timestamp: timestamp,
		flags:     parts[5],
	}

	for _, f := range []struct {
		dst      *float64
		raw      string
		name     string
		sentinel float64
	}{
		{&rec.dryBulbTemperature, parts[6], "dry bulb temperature", 99.9},
		{&rec.dewPointTemperature, parts[7], "dew point temperature", 99.9},
		{&rec.relativeHumidity, parts[8], "relative humidity", 999},
		{&rec.atmosphericPressure, parts[9], "atmospheric pressure", 999999},
		{&rec.extraterrestrialHorizontalRadiation, parts[10], "extraterrestrial horizontal radiation", 9999},
		{&rec.extraterrestrialDirectNormalRadiation, parts[11], "extraterrestrial direct normal radiation", 9999},
		{&rec.horizontalInfraredRadiationIntensity, parts[12], "horizontal infrared radiation intensity", 9999},
		{&rec.globalHorizontalRadiation, parts[13], "global horizontal radiation", 9999},
		{&rec.directNormalRadiation, parts[14], "direct normal radiation", 9999},
		{&rec.diffuseHorizontalRadiation, parts[15], "diffuse horizontal radiation", 9999},
		{&rec.zenithLuminance, parts[19], "zenith luminance", 9999},
		{&rec.windDirection, parts[20], "wind direction", 999},
		{&rec.windSpeed, parts[21], "wind speed", 999},
		{&rec.totalSkyCover, parts[22], "total sky cover", 99},
		{&rec.opaqueSkyCover, parts[23], "opaque sky cover", 99},
		{&rec.visibility, parts[24], "visibility", 9999},
		{&rec.ceilingHeight, parts[25], "ceiling height", 99999},
		{&rec.precipitableWater, parts[28], "precipitable water", 999},
		{&rec.aerosolOpticalDepth, parts[29], "aerosol optical depth", 999},
		{&rec.snowDepth, parts[30], "snow depth", 999},
		{&rec.daysSinceLastSnowfall, parts[31], "days since last snowfall", 99},
	} {
		*f.dst, err = sentinelField(f.raw, f.name, f.sentinel)
		if err != nil {
			return nil, err
		}
	}

	// The three illuminance columns use a threshold rather than an exact
	// sentinel: values of 999900 and above mean missing.
	for _, f := range []struct {
		dst  *float64
		raw  string
		name string
	}{
		{&rec.globalHorizontalIlluminance, parts[16], "global horizontal illuminance"},
		{&rec.directNormalIlluminance, parts[17], "direct normal illuminance"},
		{&rec.diffuseHorizontalIlluminance, parts[18], "diffuse horizontal illuminance"},
	} {
		*f.dst, err = thresholdField(f.raw, f.name, 999900)
		if err != nil {
			return nil, err
		}
	}

	rec.presentWeatherObservation = parts[26] == "0"
	rec.presentWeatherCodes, err = parsePresentWeather(parts[27])
	if err != nil {
		return nil, err
	}

	// Trailing columns only exist in newer files; a structurally absent field
	// is NaN, which is distinct from a present field carrying its sentinel.
	rec.albedo, err = trailingField(parts, 32, "albedo", 999)
	if err != nil {
		return nil, err
	}
	rec.liquidPrecipitationDepth, err = trailingField(parts, 33, "liquid precipitation depth", 999)
	if err != nil {
		return nil, err
	}
	rec.liquidPrecipitationQuantity, err = trailingField(parts, 34, "liquid precipitation quantity", 999)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// resolveTimestamp combines the calendar fields with the header's fixed zone.
// The zone is a constant offset so resolution is unambiguous; the only
// failure mode is calendar components that do not form a real date, detected
// by comparing the normalized result against the inputs.
func resolveTimestamp(year, month, day, hour, minute int, tz *time.Location) (time.Time, error) {
	storedHour := hour - 1
	storedMinute := minute
	if storedMinute == 60 {
		storedMinute = 0
	}

	ts := time.Date(year, time.Month(month), day, storedHour, storedMinute, 0, 0, tz)
	if ts.Year() != year || ts.Month() != time.Month(month) || ts.Day() != day ||
		ts.Hour() != storedHour || ts.Minute() != storedMinute {
		return time.Time{}, parseErrorf(KindDataRow,
			"invalid timestamp: %04d-%02d-%02d %02d:%02d:00", year, month, day, hour, minute)
	}
	return ts, nil
}

func intField(raw, name string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, parseErrorf(KindDataRow, "invalid %s: %q", name, raw)
	}
	return v, nil
}

// sentinelField parses a numeric field whose documented missing-value marker
// is an exact magic number. NaN is reserved for the sentinel: a parse failure
// is fatal, never silently missing.
func sentinelField(raw, name string, sentinel float64) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, parseErrorf(KindDataRow, "invalid %s: %q", name, raw)
	}
	if v == sentinel {
		return math.NaN(), nil
	}
	return v, nil
}

// thresholdField is sentinelField for the illuminance columns, where any
// value at or above the limit means missing.
func thresholdField(raw, name string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, parseErrorf(KindDataRow, "invalid %s: %q", name, raw)
	}
	if v >= limit {
		return math.NaN(), nil
	}
	return v, nil
}

// trailingField decodes one of the optional trailing columns: structurally
// absent fields become NaN, present fields follow the usual sentinel rule.
func trailingField(parts []string, idx int, name string, sentinel float64) (float64, error) {
	if len(parts) <= idx {
		return math.NaN(), nil
	}
	return sentinelField(parts[idx], name, sentinel)
}
