package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumStableAcrossClone(t *testing.T) {
	st := twoPlayerState()
	st.Zones["p1"].Top = []Placement{{CardID: "c-1", FaceUp: true, Sequence: 1}}
	st.DerivedOf("p1").CalculatedPowers["c-1"] = 145

	cp, err := st.Clone()
	require.NoError(t, err)

	assert.Equal(t, st.Checksum(), cp.Checksum())
}

func TestChecksumIgnoresUpdateUUID(t *testing.T) {
	a := twoPlayerState()
	b := twoPlayerState()
	a.RotateUUID()
	b.RotateUUID()

	assert.Equal(t, a.Checksum(), b.Checksum())
}

func TestChecksumDetectsStateChange(t *testing.T) {
	a := twoPlayerState()
	b := twoPlayerState()
	before := a.Checksum()

	b.Players["p1"].PlayerPoint = 10
	assert.NotEqual(t, before, b.Checksum())

	c := twoPlayerState()
	c.Zones["p1"].Help = &Placement{CardID: "h-1", FaceUp: true, Sequence: 1}
	assert.NotEqual(t, before, c.Checksum())
}
