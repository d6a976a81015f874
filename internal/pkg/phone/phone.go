// Package phone normalises mobile money numbers.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidNumber is returned for input that is not a valid phone number.
var ErrInvalidNumber = errors.New("invalid phone number")

// ErrUnknownRegion is returned for a region code phonenumbers has no metadata for.
var ErrUnknownRegion = errors.New("unknown region")

// Normalize parses raw, which must carry its "+<country>" prefix unless defaultRegion is set,
// and returns it in E.164 form.
func Normalize(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidNumber
	}
	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil {
		return "", ErrInvalidNumber
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidNumber
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// FromLocal prefixes a national number with countryCode (e.g. "+233") after dropping leading zeros,
// then validates the result.
func FromLocal(local, countryCode string) (string, error) {
	local = strings.TrimSpace(local)
	if local == "" {
		return "", ErrInvalidNumber
	}
	return Normalize(countryCode+strings.TrimLeft(local, "0"), "")
}

// ForRegion validates a national or international number as belonging to region
// (ISO 3166 code, e.g. "GH") and returns it in E.164 form.
func ForRegion(raw, region string) (string, error) {
	region = strings.ToUpper(strings.TrimSpace(region))
	if phonenumbers.GetCountryCodeForRegion(region) == 0 {
		return "", ErrUnknownRegion
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidNumber
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumberForRegion(num, region) {
		return "", ErrInvalidNumber
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// StripCountryCode removes countryCode from the front of an international number.
func StripCountryCode(number, countryCode string) string {
	return strings.TrimPrefix(strings.TrimSpace(number), countryCode)
}
