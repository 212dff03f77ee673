package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const dateParamLayout = "2006-01-02"

// ParseDateParam reads a YYYY-MM-DD query parameter, returning fallback when
// the parameter is absent or empty.
func ParseDateParam(query url.Values, name string, fallback time.Time) (time.Time, error) {
	raw := query.Get(name)
	if raw == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation(dateParamLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// ParseIntParam reads an integer query parameter, returning fallback when the
// parameter is absent or empty.
func ParseIntParam(query url.Values, name string, fallback int) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	return n, nil
}

// ParseFloatParam reads a required float query parameter.
func ParseFloatParam(query url.Values, name string) (float64, error) {
	raw := query.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("is required")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("must be a number")
	}
	return f, nil
}

// ParseFloatParamWithFallback reads a float query parameter, returning
// fallback when the parameter is absent or empty.
func ParseFloatParamWithFallback(query url.Values, name string, fallback float64) (float64, error) {
	raw := query.Get(name)
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("must be a number")
	}
	return f, nil
}
