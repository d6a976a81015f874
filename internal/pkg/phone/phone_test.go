package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	got, err := Normalize("+233 24 412 3456", "")
	require.NoError(t, err)
	assert.Equal(t, "+233244123456", got)

	got, err = Normalize("0244123456", "GH")
	require.NoError(t, err)
	assert.Equal(t, "+233244123456", got)

	_, err = Normalize("0244123456", "")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = Normalize("+233 12", "")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = Normalize("  ", "")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestFromLocal(t *testing.T) {
	got, err := FromLocal("0244123456", "+233")
	require.NoError(t, err)
	assert.Equal(t, "+233244123456", got)

	got, err = FromLocal("244123456", "+233")
	require.NoError(t, err)
	assert.Equal(t, "+233244123456", got)

	_, err = FromLocal("", "+233")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestForRegion(t *testing.T) {
	got, err := ForRegion("0244123456", "GH")
	require.NoError(t, err)
	assert.Equal(t, "+233244123456", got)

	got, err = ForRegion("+254 712 345678", "ke")
	require.NoError(t, err)
	assert.Equal(t, "+254712345678", got)

	_, err = ForRegion("+254712345678", "GH")
	assert.ErrorIs(t, err, ErrInvalidNumber, "number from another country")

	_, err = ForRegion("0244123456", "")
	assert.ErrorIs(t, err, ErrUnknownRegion)

	_, err = ForRegion("0244123456", "XX")
	assert.ErrorIs(t, err, ErrUnknownRegion)
}

func TestStripCountryCode(t *testing.T) {
	assert.Equal(t, "244123456", StripCountryCode("+233244123456", "+233"))
	assert.Equal(t, "0244123456", StripCountryCode("0244123456", "+233"))
}
