// Package frame exports a parsed weather table as a gota dataframe for
// analysis and ad-hoc filtering. Column names match the JSON field names the
// pipeline publishes, with the packed present-weather code expanded into nine
// present_* integer columns.
package frame

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/epw-ingest-service/internal/epw"
)

// New builds a dataframe from the weather table. Timestamps are exported as
// RFC3339 strings; missing numeric values stay NaN, which gota renders as NaN
// in Float columns.
func New(data *epw.WeatherData) (dataframe.DataFrame, error) {
	timestamps := make([]string, data.Len())
	for i, ts := range data.Timestamp {
		timestamps[i] = ts.Format(time.RFC3339)
	}

	pw := make([][]int, 9)
	for i := range pw {
		pw[i] = make([]int, data.Len())
	}
	for i, codes := range data.PresentWeatherCodes {
		pw[0][i] = int(codes.Thunderstorm)
		pw[1][i] = int(codes.Rain)
		pw[2][i] = int(codes.RainSqualls)
		pw[3][i] = int(codes.Snow)
		pw[4][i] = int(codes.SnowShowers)
		pw[5][i] = int(codes.Sleet)
		pw[6][i] = int(codes.Fog)
		pw[7][i] = int(codes.Smoke)
		pw[8][i] = int(codes.IcePellets)
	}

	df := dataframe.New(
		series.New(timestamps, series.String, "timestamp"),
		series.New(data.Flags, series.String, "flags"),
		series.New(data.DryBulbTemperature, series.Float, "dry_bulb_temperature"),
		series.New(data.DewPointTemperature, series.Float, "dew_point_temperature"),
		series.New(data.RelativeHumidity, series.Float, "relative_humidity"),
		series.New(data.AtmosphericPressure, series.Float, "atmospheric_pressure"),
		series.New(data.ExtraterrestrialHorizontalRadiation, series.Float, "extraterrestrial_horizontal_radiation"),
		series.New(data.ExtraterrestrialDirectNormalRadiation, series.Float, "extraterrestrial_direct_normal_radiation"),
		series.New(data.HorizontalInfraredRadiationIntensity, series.Float, "horizontal_infrared_radiation_intensity"),
		series.New(data.GlobalHorizontalRadiation, series.Float, "global_horizontal_radiation"),
		series.New(data.DirectNormalRadiation, series.Float, "direct_normal_radiation"),
		series.New(data.DiffuseHorizontalRadiation, series.Float, "diffuse_horizontal_radiation"),
		series.New(data.GlobalHorizontalIlluminance, series.Float, "global_horizontal_illuminance"),
		series.New(data.DirectNormalIlluminance, series.Float, "direct_normal_illuminance"),
		series.New(data.DiffuseHorizontalIlluminance, series.Float, "diffuse_horizontal_illuminance"),
		series.New(data.ZenithLuminance, series.Float, "zenith_luminance"),
		series.New(data.WindDirection, series.Float, "wind_direction"),
		series.New(data.WindSpeed, series.Float, "wind_speed"),
		series.New(data.TotalSkyCover, series.Float, "total_sky_cover"),
		series.New(data.OpaqueSkyCover, series.Float, "opaque_sky_cover"),
		series.New(data.Visibility, series.Float, "visibility"),
		series.New(data.CeilingHeight, series.Float, "ceiling_height"),
		series.New(data.PresentWeatherObservation, series.Bool, "present_weather_observation"),
		series.New(pw[0], series.Int, "present_thunderstorm"),
		series.New(pw[1], series.Int, "present_rain"),
		series.New(pw[2], series.Int, "present_rain_squalls"),
		series.New(pw[3], series.Int, "present_snow"),
		series.New(pw[4], series.Int, "present_snow_showers"),
		series.New(pw[5], series.Int, "present_sleet"),
		series.New(pw[6], series.Int, "present_fog"),
		series.New(pw[7], series.Int, "present_smoke"),
		series.New(pw[8], series.Int, "present_ice_pellets"),
		series.New(data.PrecipitableWater, series.Float, "precipitable_water"),
		series.New(data.AerosolOpticalDepth, series.Float, "aerosol_optical_depth"),
		series.New(data.SnowDepth, series.Float, "snow_depth"),
		series.New(data.DaysSinceLastSnowfall, series.Float, "days_since_last_snowfall"),
		series.New(data.Albedo, series.Float, "albedo"),
		series.New(data.LiquidPrecipitationDepth, series.Float, "liquid_precipitation_depth"),
		series.New(data.LiquidPrecipitationQuantity, series.Float, "liquid_precipitation_quantity"),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("build dataframe: %w", df.Err)
	}
	return df, nil
}
