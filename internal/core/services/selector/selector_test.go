package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectPicksHighestWeightedMAC(t *testing.T) {
	e := NewEvidence(map[string]struct{}{"aa:aa:aa:aa:aa:aa": {}})
	e.ObserveBTMResponse("11:22:33:44:55:66")
	e.ObserveOther("77:88:99:aa:bb:cc")
	e.ObserveOther("77:88:99:aa:bb:cc")

	result := e.Select("")
	assert.Equal(t, "11:22:33:44:55:66", result.ClientMAC)
}

func TestSelectExcludesBSSIDs(t *testing.T) {
	e := NewEvidence(map[string]struct{}{"11:22:33:44:55:66": {}})
	e.ObserveBTMResponse("11:22:33:44:55:66")
	e.ObserveOther("77:88:99:aa:bb:cc")

	result := e.Select("")
	assert.Equal(t, "77:88:99:aa:bb:cc", result.ClientMAC)
}

func TestSelectHintWins(t *testing.T) {
	e := NewEvidence(map[string]struct{}{})
	e.ObserveBTMResponse("11:22:33:44:55:66")

	result := e.Select("76:88:99:AA:BB:CC")
	assert.Equal(t, "76:88:99:aa:bb:cc", result.ClientMAC)
	assert.False(t, result.HintBSSIDWarning)
}

func TestSelectHintThatIsBSSIDStillWinsWithWarning(t *testing.T) {
	e := NewEvidence(map[string]struct{}{"10:22:33:44:55:66": {}})

	result := e.Select("10:22:33:44:55:66")
	assert.Equal(t, "10:22:33:44:55:66", result.ClientMAC)
	assert.True(t, result.HintBSSIDWarning)
}

func TestSelectIgnoresInvalidHint(t *testing.T) {
	e := NewEvidence(map[string]struct{}{})
	e.ObserveOther("77:88:99:aa:bb:cc")

	result := e.Select("not-a-mac")
	assert.Equal(t, "77:88:99:aa:bb:cc", result.ClientMAC)
}
