package epw

// PresentWeather is the decoded form of the packed 9-character weather
// observation code carried in every data row. Each field is a single-digit
// categorical code per the TMY2 convention; 9 conventionally means
// "none/unknown" and is not translated further.
type PresentWeather struct {
	Thunderstorm uint8 // thunderstorm, tornado, or squall
	Rain         uint8
	RainSqualls  uint8 // rain squalls or drizzle
	Snow         uint8
	SnowShowers  uint8 // snow showers or squalls
	Sleet        uint8 // sleet, ice pellet showers, or hail
	Fog          uint8
	Smoke        uint8 // smoke, haze, or dust
	IcePellets   uint8
}

// parsePresentWeather decodes the fixed nine character positions of the
// packed code. Any position that is not a decimal digit fails with the full
// offending string.
func parsePresentWeather(code string) (PresentWeather, error) {
	if len(code) < 9 {
		return PresentWeather{}, parseErrorf(KindDataRow, "invalid conditions: %q", code)
	}

	var digits [9]uint8
	for i := 0; i < 9; i++ {
		c := code[i]
		if c < '0' || c > '9' {
			return PresentWeather{}, parseErrorf(KindDataRow, "invalid conditions: %q", code)
		}
		digits[i] = c - '0'
	}

	return PresentWeather{
		Thunderstorm: digits[0],
		Rain:         digits[1],
		RainSqualls:  digits[2],
		Snow:         digits[3],
		SnowShowers:  digits[4],
		Sleet:        digits[5],
		Fog:          digits[6],
		Smoke:        digits[7],
		IcePellets:   digits[8],
	}, nil
}
