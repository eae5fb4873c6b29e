package epw

import (
	"math"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	f, err := Open(testFile)
	require.NoError(t, err)

	assert.Equal(t, "TAMPA", f.Header.Location.City)
	require.Equal(t, 3, f.Data.Len())

	want := time.Date(1987, 1, 1, 0, 0, 0, 0, f.Header.Location.TimeZone)
	assert.True(t, want.Equal(f.Data.Timestamp[0]), "got %v", f.Data.Timestamp[0])

	assert.Equal(t, 20.6, f.Data.DryBulbTemperature[0])
	assert.Equal(t, 230.0, f.Data.WindDirection[0])
	assert.True(t, math.IsNaN(f.Data.WindDirection[2]))
	assert.True(t, math.IsNaN(f.Data.ZenithLuminance[0]))
	assert.False(t, f.Data.PresentWeatherObservation[0])
	assert.Equal(t, PresentWeather{
		Thunderstorm: 9, Rain: 9, RainSqualls: 9, Snow: 9, SnowShowers: 9,
		Sleet: 9, Fog: 9, Smoke: 9, IcePellets: 9,
	}, f.Data.PresentWeatherCodes[0])

	// Rows with only 32 fields leave the trailing columns missing.
	assert.True(t, math.IsNaN(f.Data.Albedo[0]))
	assert.True(t, math.IsNaN(f.Data.LiquidPrecipitationDepth[0]))
	assert.True(t, math.IsNaN(f.Data.LiquidPrecipitationQuantity[0]))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("testdata/no_such_file.epw")
	perr := requireKind(t, err, KindFileAccess)
	assert.ErrorIs(t, perr, os.ErrNotExist)
}

func TestColumnLengthsMatch(t *testing.T) {
	f, err := Open(testFile)
	require.NoError(t, err)

	v := reflect.ValueOf(*f.Data)
	tp := v.Type()
	for i := 0; i < v.NumField(); i++ {
		assert.Equal(t, f.Data.Len(), v.Field(i).Len(), "column %s", tp.Field(i).Name)
	}
}

func TestParseCRLF(t *testing.T) {
	raw, err := os.ReadFile(testFile)
	require.NoError(t, err)
	crlf := strings.ReplaceAll(string(raw), "\n", "\r\n")

	f, err := Parse(strings.NewReader(crlf))
	require.NoError(t, err)
	assert.Equal(t, "TAMPA", f.Header.Location.City)
	assert.Equal(t, 3, f.Data.Len())
}

func TestParseBadDataRowFailsWhole(t *testing.T) {
	raw, err := os.ReadFile(testFile)
	require.NoError(t, err)
	corrupted := strings.Replace(string(raw), "20.6", "oops", 1)

	_, err = Parse(strings.NewReader(corrupted))
	perr := requireKind(t, err, KindDataRow)
	assert.Contains(t, perr.Detail, "dry bulb temperature")
}
