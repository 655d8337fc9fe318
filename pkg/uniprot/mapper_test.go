package uniprot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryWithVsp(variation string) *ParsedEntry {
	return &ParsedEntry{
		Sequence: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		Features: []Feature{{
			ID:        "VSP_TEST",
			Type:      "variant sequence",
			Start:     5,
			End:       7,
			Variation: variation,
		}},
	}
}

func TestDeletionShiftsDownstreamPositions(t *testing.T) {
	m := NewMapper(entryWithVsp("Missing"), []string{"VSP_TEST"})

	mapped, err := m.MapPoint(10)
	require.NoError(t, err)
	assert.Equal(t, int32(7), mapped)

	_, err = m.MapPoint(6)
	assert.ErrorIs(t, err, ErrVspDeletionEvent)
}

func TestSubstitutionMapsIdentity(t *testing.T) {
	// Replace positions 5..7 (len 3) with len 3 -> delta 0.
	m := NewMapper(entryWithVsp("XYZ"), []string{"VSP_TEST"})

	for pos := int32(5); pos <= 7; pos++ {
		mapped, err := m.MapPoint(pos)
		require.NoError(t, err)
		assert.Equal(t, pos, mapped)
	}

	mapped, err := m.MapPoint(10)
	require.NoError(t, err)
	assert.Equal(t, int32(10), mapped)
}

func TestLengthChangingIndelRejectsInterior(t *testing.T) {
	// Replace positions 5..7 (len 3) with len 1 -> delta -2.
	m := NewMapper(entryWithVsp("E"), []string{"VSP_TEST"})

	mapped, err := m.MapPoint(5)
	require.NoError(t, err)
	assert.Equal(t, int32(5), mapped)

	_, err = m.MapPoint(6)
	assert.ErrorIs(t, err, ErrVspUnresolvable)
	_, err = m.MapPoint(7)
	assert.ErrorIs(t, err, ErrVspUnresolvable)

	mapped, err = m.MapPoint(10)
	require.NoError(t, err)
	assert.Equal(t, int32(8), mapped)
}

func TestSpliceVariantWithoutVariationIsDeletion(t *testing.T) {
	e := entryWithVsp("")
	e.Features[0].Type = "splice variant"
	m := NewMapper(e, []string{"VSP_TEST"})

	_, err := m.MapPoint(5)
	assert.ErrorIs(t, err, ErrVspDeletionEvent)

	mapped, err := m.MapPoint(8)
	require.NoError(t, err)
	assert.Equal(t, int32(5), mapped)
}

func TestVariantSequenceWithNoteIsSkipped(t *testing.T) {
	// "variant sequence" with indeterminate variation length contributes no
	// edit at all.
	m := NewMapper(entryWithVsp("See Ref 2"), []string{"VSP_TEST"})
	assert.Equal(t, 0, m.EditCount())

	mapped, err := m.MapPoint(10)
	require.NoError(t, err)
	assert.Equal(t, int32(10), mapped)
}

func TestEmptyVspIDsIsIdentity(t *testing.T) {
	m := NewMapper(entryWithVsp("Missing"), nil)
	assert.Equal(t, 0, m.EditCount())
	assert.Equal(t, int32(0), m.TotalDelta())

	for _, pos := range []int32{1, 5, 6, 26} {
		mapped, err := m.MapPoint(pos)
		require.NoError(t, err)
		assert.Equal(t, pos, mapped)
	}
}

func TestEditsFromOtherIsoformsDoNotApply(t *testing.T) {
	e := entryWithVsp("Missing")
	m := NewMapper(e, []string{"VSP_OTHER"})
	assert.Equal(t, 0, m.EditCount())
}

func TestMapperRefusesNonPositivePositions(t *testing.T) {
	m := NewMapper(&ParsedEntry{}, nil)

	_, err := m.MapPoint(0)
	assert.ErrorIs(t, err, ErrVspUnresolvable)
	_, err = m.MapPoint(-4)
	assert.ErrorIs(t, err, ErrVspUnresolvable)
}

func TestShiftAccumulatesAcrossEdits(t *testing.T) {
	e := &ParsedEntry{
		Sequence: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		Features: []Feature{
			{ID: "VSP_A", Type: "splice variant", Start: 2, End: 4, Variation: ""},
			{ID: "VSP_B", Type: "splice variant", Start: 10, End: 11, Variation: ""},
		},
	}
	m := NewMapper(e, []string{"VSP_A", "VSP_B"})
	require.Equal(t, 2, m.EditCount())
	assert.Equal(t, int32(-5), m.TotalDelta())

	// Outside every span: mapped = pos + sum of deltas for edits ending
	// before pos.
	mapped, err := m.MapPoint(8)
	require.NoError(t, err)
	assert.Equal(t, int32(5), mapped)

	mapped, err = m.MapPoint(15)
	require.NoError(t, err)
	assert.Equal(t, int32(10), mapped)
}

func TestTotalDelta(t *testing.T) {
	m := NewMapper(entryWithVsp("E"), []string{"VSP_TEST"})
	assert.Equal(t, int32(-2), m.TotalDelta())
	assert.Equal(t, 1, m.EditCount())
}

func TestCleanedAALen(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"See Ref 2", 0},
		{"In isoform 3", 0},
		{"123", 0},
		{"ABC DEF", 0},
		{"", 0},
		{"   ", 0},
		{"ACGT", 4},
		{"AcGt", 4},
		{"X", 1},
		{"MVLSPADKTNVKAAWGKVGAHAGEYGAEALERMFLSFPTTKTYFPHFDLSH", 51},
		{"UOXBZJ", 6},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cleanedAALen(tc.in), "cleanedAALen(%q)", tc.in)
	}
}
