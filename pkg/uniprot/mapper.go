package uniprot

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Enumerated mapping failures. They are local to the row being built and
// never abort a run; callers branch with errors.Is.
var (
	// ErrVspDeletionEvent: the position falls inside a deleted segment.
	ErrVspDeletionEvent = errors.New("position removed by splice variant deletion")
	// ErrPtmOutOfBounds: the mapped coordinate is outside isoform bounds.
	ErrPtmOutOfBounds = errors.New("mapped position out of bounds")
	// ErrVspUnresolvable: the position has no single defined image.
	ErrVspUnresolvable = errors.New("position cannot be mapped deterministically")
)

type vspEdit struct {
	begin, end int32 // 1-based inclusive canonical span
	delta      int32 // new_len - original_len
	isDeletion bool
}

// CoordinateMapper rewrites canonical 1-based positions into isoform
// positions under a sorted list of VSP-scoped edits. It is a small owned
// value; an empty mapper is the identity.
type CoordinateMapper struct {
	edits []vspEdit
}

// NewMapper builds a mapper using only splice-variant edits referenced by
// the isoform's vsp ids. With no ids it returns the identity mapper.
func NewMapper(e *ParsedEntry, vspIDs []string) *CoordinateMapper {
	m := &CoordinateMapper{}
	if len(vspIDs) == 0 {
		return m
	}

	vspSet := make(map[string]struct{}, len(vspIDs))
	for _, id := range vspIDs {
		vspSet[id] = struct{}{}
	}

	for i := range e.Features {
		feat := &e.Features[i]

		// UniProt encodes isoform differences as "splice variant" features
		// (id="VSP_..."); older exports use "variant sequence".
		if feat.Type != "splice variant" && feat.Type != "variant sequence" {
			continue
		}
		if feat.ID == "" {
			continue
		}
		if _, ok := vspSet[feat.ID]; !ok {
			continue
		}
		if feat.Start <= 0 || feat.End <= 0 || feat.End < feat.Start {
			continue
		}

		originalLen := feat.End - feat.Start + 1
		variationLen := int32(cleanedAALen(feat.Variation))

		// Splice variants frequently carry only a <location>; that encodes a
		// deletion of the span relative to canonical.
		isMissing := false
		if feat.Type == "splice variant" && variationLen <= 0 {
			isMissing = true
		} else {
			isMissing = containsMissing(feat.Variation) || containsMissing(feat.Description)
		}

		newLen := variationLen
		if isMissing {
			newLen = 0
		}

		// Indeterminate length and not a deletion: don't guess shifts.
		if !isMissing && newLen <= 0 {
			continue
		}

		m.edits = append(m.edits, vspEdit{
			begin:      feat.Start,
			end:        feat.End,
			delta:      newLen - originalLen,
			isDeletion: isMissing && newLen == 0,
		})
	}

	sort.Slice(m.edits, func(i, j int) bool { return m.edits[i].begin < m.edits[j].begin })
	return m
}

// EditCount reports the number of edits, for diagnostics.
func (m *CoordinateMapper) EditCount() int { return len(m.edits) }

// TotalDelta is the summed length change across all edits. Positive means
// net insertion.
func (m *CoordinateMapper) TotalDelta() int32 {
	var total int32
	for _, e := range m.edits {
		total += e.delta
	}
	return total
}

// MapPoint maps a 1-based canonical position to its isoform position.
//
// Rules, per edit in ascending begin order:
//   - pos < begin: unaffected by this and all later edits.
//   - pos > end: accumulate the edit's delta and continue.
//   - inside a deleted span: ErrVspDeletionEvent.
//   - inside a pure substitution (delta == 0): identity within the span.
//   - at the begin of a length-changing indel: the first residue is the only
//     deterministic anchor.
//   - elsewhere inside a length-changing indel: ErrVspUnresolvable, never a
//     snapped answer.
func (m *CoordinateMapper) MapPoint(pos int32) (int32, error) {
	if pos <= 0 {
		return 0, ErrVspUnresolvable
	}

	var shift int32
	for _, edit := range m.edits {
		if pos < edit.begin {
			break
		}
		if pos > edit.end {
			shift += edit.delta
			continue
		}

		if edit.isDeletion {
			return 0, ErrVspDeletionEvent
		}
		if edit.delta == 0 {
			return checkedMapped(pos + shift)
		}
		if pos == edit.begin {
			return checkedMapped(edit.begin + shift)
		}
		return 0, ErrVspUnresolvable
	}

	return checkedMapped(pos + shift)
}

func checkedMapped(mapped int32) (int32, error) {
	if mapped <= 0 {
		return 0, ErrPtmOutOfBounds
	}
	return mapped, nil
}

// Standard 20 amino acids plus selenocysteine (U), pyrrolysine (O), and the
// ambiguity codes X, B, Z, J; both cases accepted.
var validAA = func() (t [256]bool) {
	for _, b := range []byte("ACDEFGHIKLMNPQRSTUVWXYZBJO") {
		t[b] = true
		t[b+'a'-'A'] = true
	}
	return
}()

// cleanedAALen counts amino-acid letters in a variation string, or returns 0
// when the text is a descriptive note. Anything outside the amino-acid
// alphabet, including interior whitespace or digits ("See Ref 2",
// "In isoform 3"), marks free text and prevents phantom coordinate shifts.
func cleanedAALen(text string) int {
	trimmed := strings.TrimSpace(text)
	for i := 0; i < len(trimmed); i++ {
		if !validAA[trimmed[i]] {
			return 0
		}
	}
	return len(trimmed)
}

func containsMissing(s string) bool {
	return strings.Contains(strings.ToLower(s), "missing")
}
