package weather

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoryFromProvider(t *testing.T) {
	cases := map[string]Category{
		"Clear":        CategoryClear,
		"CLOUDS":       CategoryClouds,
		"rain":         CategoryRain,
		"Drizzle":      CategoryDrizzle,
		"Thunderstorm": CategoryThunderstorm,
		"Snow":         CategorySnow,
		"Mist":         CategoryMist,
		"fog":          CategoryMist,
		"Haze":         CategoryMist,
		"Tornado":      CategoryOther,
		"":             CategoryOther,
	}
	for in, want := range cases {
		require.Equal(t, want, CategoryFromProvider(in), "main=%q", in)
	}
}

func TestIcon(t *testing.T) {
	cases := []struct {
		cat   Category
		isDay bool
		want  string
	}{
		{CategoryClear, true, "sun"},
		{CategoryClear, false, "moon"},
		{CategoryClouds, true, "cloud"},
		{CategoryRain, true, "cloud-rain"},
		{CategoryDrizzle, false, "cloud-rain"},
		{CategoryThunderstorm, true, "bolt"},
		{CategorySnow, true, "snowflake"},
		{CategoryMist, true, "smog"},
		{CategoryOther, true, "cloud"},
	}
	for _, tc := range cases {
		rec := WeatherRecord{Category: tc.cat, IsDay: tc.isDay}
		require.Equal(t, tc.want, rec.Icon(), "category=%s day=%v", tc.cat, tc.isDay)
	}
}

func TestRound(t *testing.T) {
	require.Equal(t, 18, Round(18.2))
	require.Equal(t, 19, Round(18.5))
	require.Equal(t, -3, Round(-2.5))
}
