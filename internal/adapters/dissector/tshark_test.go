package dissector

import (
	"testing"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestDecodeFieldsParsesTabSeparatedLine(t *testing.T) {
	line := "1700000000.123456\t8\taa:bb:cc:dd:ee:ff\taa:bb:cc:dd:ee:ff\tff:ff:ff:ff:ff:ff\t2437\t-45\tHomeNetwork\t0\t0\t0\t\t150\twlan"

	rec, ok := decodeFields(line)
	assert.True(t, ok)
	assert.Equal(t, 8, rec.Subtype)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", rec.BSSID)
	assert.Equal(t, 2437, rec.FrequencyMHz)
	assert.Equal(t, -45, rec.RSSI)
	assert.Equal(t, "HomeNetwork", rec.SSID)
	assert.Nil(t, rec.AssocStatusCode)
}

func TestDecodeFieldsCapturesBTMStatusCode(t *testing.T) {
	line := "1700000001.0\t13\taa:bb:cc:dd:ee:ff\taa:bb:cc:dd:ee:ff\t11:22:33:44:55:66\t5180\t-60\t\t0\t10\t8\t0\t80\twlan"

	rec, ok := decodeFields(line)
	assert.True(t, ok)
	assert.Equal(t, domain.CategoryWNM, rec.CategoryCode)
	if assert.NotNil(t, rec.BTMStatusCode) {
		assert.Equal(t, 0, *rec.BTMStatusCode)
	}
}

func TestDecodeFieldsConvertsKHzFrequency(t *testing.T) {
	line := "1700000002.0\t0\taa:bb:cc:dd:ee:ff\t11:22:33:44:55:66\taa:bb:cc:dd:ee:ff\t5180000\t-50\t\t0\t0\t0\t\t60\twlan"

	rec, ok := decodeFields(line)
	assert.True(t, ok)
	assert.Equal(t, 5180, rec.FrequencyMHz)
}

func TestDecodeFieldsSkipsShortLines(t *testing.T) {
	_, ok := decodeFields("too\tshort")
	assert.False(t, ok)
}
