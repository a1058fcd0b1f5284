package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarRoundTrip(t *testing.T) {
	for _, value := range []string{"HTC", "Adiós", "Metropolitan Line", ""} {
		assert.Equal(t, value, DecodeScalar(EncodeScalar(value)))
	}
}

func TestEncodeFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   string
	}{
		{"all filled", []string{"a", "b", "c"}, "0|a||1|b||2|c"},
		{"sparse", []string{"a", "", "c"}, "0|a||2|c"},
		{"single", []string{"x"}, "0|x"},
		{"all empty", []string{"", "", ""}, ""},
		{"empty vector", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeFields(tt.fields))
		})
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
	}{
		{"dense", []string{"a", "b", "c"}},
		{"sparse", []string{"a", "", "c"}},
		{"trailing empty", []string{"a", "b", ""}},
		{"empty", []string{"", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := DecodeFields(EncodeFields(tt.fields), len(tt.fields))
			require.NoError(t, err)
			assert.Equal(t, tt.fields, decoded)
		})
	}
}

func TestDecodeFieldsEmptyValue(t *testing.T) {
	decoded, err := DecodeFields("", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "", ""}, decoded)
}

func TestDecodeFieldsValueWithSpaces(t *testing.T) {
	decoded, err := DecodeFields("0|et hus||1|en bil", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"et hus", "en bil"}, decoded)
}

func TestDecodeFieldsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"no separator", "abc"},
		{"non-numeric index", "x|value"},
		{"negative index", "-1|value"},
		{"index beyond field count", "5|value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFields(tt.encoded, 3)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestRegionClickRoundTrip(t *testing.T) {
	encoded := EncodeRegionClick(120.4, 88.6, true)
	assert.Equal(t, "120|89|correct", encoded)

	click, err := DecodeRegionClick(encoded)
	require.NoError(t, err)
	assert.Equal(t, RegionClick{X: 120, Y: 89, Correct: true}, click)

	click, err = DecodeRegionClick(EncodeRegionClick(3, 4, false))
	require.NoError(t, err)
	assert.False(t, click.Correct)
}

func TestDecodeRegionClickEmpty(t *testing.T) {
	click, err := DecodeRegionClick("")
	require.NoError(t, err)
	assert.Equal(t, RegionClick{}, click)
}

func TestDecodeRegionClickMalformed(t *testing.T) {
	for _, encoded := range []string{"1|2", "1|2|3|4", "a|2|correct", "1|b|wrong", "1|2|maybe"} {
		_, err := DecodeRegionClick(encoded)
		assert.ErrorIs(t, err, ErrMalformed, "encoded=%q", encoded)
	}
}
