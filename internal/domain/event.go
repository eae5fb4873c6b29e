package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/epw-ingest-service/internal/epw"
)

// RawFile is a weather file discovered in the spool directory, not yet parsed.
type RawFile struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// RecordEvent is one decoded weather record flattened for the sink topic,
// carrying station metadata from the file header. Numeric fields are pointers:
// nil marks a value the source file flagged as missing.
type RecordEvent struct {
	WMO       string  `json:"wmo"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`

	Timestamp time.Time `json:"timestamp"`
	Flags     string    `json:"flags,omitempty"`

	DryBulbTemperature                    *float64 `json:"dry_bulb_temperature,omitempty"`
	DewPointTemperature                   *float64 `json:"dew_point_temperature,omitempty"`
	RelativeHumidity                      *float64 `json:"relative_humidity,omitempty"`
	AtmosphericPressure                   *float64 `json:"atmospheric_pressure,omitempty"`
	ExtraterrestrialHorizontalRadiation   *float64 `json:"extraterrestrial_horizontal_radiation,omitempty"`
	ExtraterrestrialDirectNormalRadiation *float64 `json:"extraterrestrial_direct_normal_radiation,omitempty"`
	HorizontalInfraredRadiationIntensity  *float64 `json:"horizontal_infrared_radiation_intensity,omitempty"`
	GlobalHorizontalRadiation             *float64 `json:"global_horizontal_radiation,omitempty"`
	DirectNormalRadiation                 *float64 `json:"direct_normal_radiation,omitempty"`
	DiffuseHorizontalRadiation            *float64 `json:"diffuse_horizontal_radiation,omitempty"`
	GlobalHorizontalIlluminance           *float64 `json:"global_horizontal_illuminance,omitempty"`
	DirectNormalIlluminance               *float64 `json:"direct_normal_illuminance,omitempty"`
	DiffuseHorizontalIlluminance          *float64 `json:"diffuse_horizontal_illuminance,omitempty"`
	ZenithLuminance                       *float64 `json:"zenith_luminance,omitempty"`
	WindDirection                         *float64 `json:"wind_direction,omitempty"`
	WindSpeed                             *float64 `json:"wind_speed,omitempty"`
	TotalSkyCover                         *float64 `json:"total_sky_cover,omitempty"`
	OpaqueSkyCover                        *float64 `json:"opaque_sky_cover,omitempty"`
	Visibility                            *float64 `json:"visibility,omitempty"`
	CeilingHeight                         *float64 `json:"ceiling_height,omitempty"`

	PresentWeatherObservation bool  `json:"present_weather_observation"`
	PresentThunderstorm       uint8 `json:"present_thunderstorm"`
	PresentRain               uint8 `json:"present_rain"`
	PresentRainSqualls        uint8 `json:"present_rain_squalls"`
	PresentSnow               uint8 `json:"present_snow"`
	PresentSnowShowers        uint8 `json:"present_snow_showers"`
	PresentSleet              uint8 `json:"present_sleet"`
	PresentFog                uint8 `json:"present_fog"`
	PresentSmoke              uint8 `json:"present_smoke"`
	PresentIcePellets         uint8 `json:"present_ice_pellets"`

	PrecipitableWater           *float64 `json:"precipitable_water,omitempty"`
	AerosolOpticalDepth         *float64 `json:"aerosol_optical_depth,omitempty"`
	SnowDepth                   *float64 `json:"snow_depth,omitempty"`
	DaysSinceLastSnowfall       *float64 `json:"days_since_last_snowfall,omitempty"`
	Albedo                      *float64 `json:"albedo,omitempty"`
	LiquidPrecipitationDepth    *float64 `json:"liquid_precipitation_depth,omitempty"`
	LiquidPrecipitationQuantity *float64 `json:"liquid_precipitation_quantity,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// Key returns the sink message key, stable per station and record timestamp.
func (e RecordEvent) Key() string {
	return fmt.Sprintf("%s-%d", e.WMO, e.Timestamp.Unix())
}

// NewRecordEvent flattens row i of a parsed weather file into a RecordEvent.
// The caller is responsible for i being in range.
func NewRecordEvent(f *epw.File, i int) RecordEvent {
	d := f.Data
	pw := d.PresentWeatherCodes[i]

	return RecordEvent{
		WMO:       f.Header.Location.WMO,
		City:      f.Header.Location.City,
		Country:   f.Header.Location.Country,
		Latitude:  f.Header.Location.Latitude,
		Longitude: f.Header.Location.Longitude,

		Timestamp: d.Timestamp[i],
		Flags:     d.Flags[i],

		DryBulbTemperature:                    maybe(d.DryBulbTemperature[i]),
		DewPointTemperature:                   maybe(d.DewPointTemperature[i]),
		RelativeHumidity:                      maybe(d.RelativeHumidity[i]),
		AtmosphericPressure:                   maybe(d.AtmosphericPressure[i]),
		ExtraterrestrialHorizontalRadiation:   maybe(d.ExtraterrestrialHorizontalRadiation[i]),
		ExtraterrestrialDirectNormalRadiation: maybe(d.ExtraterrestrialDirectNormalRadiation[i]),
		HorizontalInfraredRadiationIntensity:  maybe(d.HorizontalInfraredRadiationIntensity[i]),
		GlobalHorizontalRadiation:             maybe(d.GlobalHorizontalRadiation[i]),
		DirectNormalRadiation:                 maybe(d.DirectNormalRadiation[i]),
		DiffuseHorizontalRadiation:            maybe(d.DiffuseHorizontalRadiation[i]),
		GlobalHorizontalIlluminance:           maybe(d.GlobalHorizontalIlluminance[i]),
		DirectNormalIlluminance:               maybe(d.DirectNormalIlluminance[i]),
		DiffuseHorizontalIlluminance:          maybe(d.DiffuseHorizontalIlluminance[i]),
		ZenithLuminance:                       maybe(d.ZenithLuminance[i]),
		WindDirection:                         maybe(d.WindDirection[i]),
		WindSpeed:                             maybe(d.WindSpeed[i]),
		TotalSkyCover:                         maybe(d.TotalSkyCover[i]),
		OpaqueSkyCover:                        maybe(d.OpaqueSkyCover[i]),
		Visibility:                            maybe(d.Visibility[i]),
		CeilingHeight:                         maybe(d.CeilingHeight[i]),

		PresentWeatherObservation: d.PresentWeatherObservation[i],
		PresentThunderstorm:       pw.Thunderstorm,
		PresentRain:               pw.Rain,
		PresentRainSqualls:        pw.RainSqualls,
		PresentSnow:               pw.Snow,
		PresentSnowShowers:        pw.SnowShowers,
		PresentSleet:              pw.Sleet,
		PresentFog:                pw.Fog,
		PresentSmoke:              pw.Smoke,
		PresentIcePellets:         pw.IcePellets,

		PrecipitableWater:           maybe(d.PrecipitableWater[i]),
		AerosolOpticalDepth:         maybe(d.AerosolOpticalDepth[i]),
		SnowDepth:                   maybe(d.SnowDepth[i]),
		DaysSinceLastSnowfall:       maybe(d.DaysSinceLastSnowfall[i]),
		Albedo:                      maybe(d.Albedo[i]),
		LiquidPrecipitationDepth:    maybe(d.LiquidPrecipitationDepth[i]),
		LiquidPrecipitationQuantity: maybe(d.LiquidPrecipitationQuantity[i]),

		ProcessedAt: now(),
	}
}

// maybe converts a NaN-encoded missing value to a nil pointer for JSON output.
func maybe(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
