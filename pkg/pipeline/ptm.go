package pipeline

import (
	"sort"
	"strings"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/proteinworks/uniparquet/pkg/metrics"
	"github.com/proteinworks/uniparquet/pkg/uniprot"
)

// Modification type codes for the ptm_sites column.
const (
	modTypeOther   int32 = 0
	modTypePhospho int32 = 1
	modTypeOGlcNAc int32 = 2
)

// buildPtmSites aggregates point PTM features into per-position sites for
// one row, applying three-step verification to every candidate:
//
//  1. canonical control: the modified residue is read off the canonical
//     sequence before any coordinate shift;
//  2. mapping: canonical rows map identically, isoform rows go through the
//     VSP mapper and are bounds-checked against the isoform sequence;
//  3. residue identity: the residue at the mapped position must equal the
//     canonical control.
//
// Failures drop the candidate, bump a per-code counter, and emit one
// structured diagnostic; they never abort the run.
func buildPtmSites(tr *TransformedRow, rec metrics.Recorder, logger kitlog.Logger) []PtmSite {
	e := tr.Entry
	isoform := tr.Sequence

	type site struct {
		aa   byte
		mods []PtmModification
	}
	sites := make(map[int32]*site)

	for i := range e.Features {
		f := &e.Features[i]
		ft := strings.ToLower(f.Type)
		if ft != "glycosylation site" && ft != "modified residue" && ft != "cross-link" {
			continue
		}
		if f.Start <= 0 || f.End <= 0 || f.Start != f.End {
			continue
		}
		start := f.Start

		rec.AddPtmAttempted(1)

		// Step 1: canonical control.
		originalAA, ok := e.CanonicalAAAt(start)
		if !ok {
			rec.PtmFail(metrics.FailCanonicalOOB)
			level.Warn(logger).Log(
				"msg", "PTM_FAIL",
				"code", metrics.FailCanonicalOOB,
				"parent_id", tr.ParentID,
				"id", tr.RowID,
				"original_index", start,
			)
			continue
		}

		// Step 2: mapping.
		mapped := start
		if tr.RowID != tr.ParentID {
			var err error
			if mapped, err = tr.Mapper.MapPoint(start); err != nil {
				code := mapFailureCode(err)
				rec.PtmFail(code)
				level.Warn(logger).Log(
					"msg", "PTM_FAIL",
					"code", code,
					"parent_id", tr.ParentID,
					"id", tr.RowID,
					"original_index", start,
				)
				continue
			}
		}
		if int(mapped) > len(isoform) {
			rec.PtmFail(metrics.FailIsoformOOB)
			level.Warn(logger).Log(
				"msg", "PTM_FAIL",
				"code", metrics.FailIsoformOOB,
				"parent_id", tr.ParentID,
				"id", tr.RowID,
				"original_index", start,
				"mapped_index", mapped,
				"isoform_len", len(isoform),
				"shift", mapped-start,
				"vsp_count", tr.Mapper.EditCount(),
				"expected_len", int32(len(e.Sequence))+tr.Mapper.TotalDelta(),
			)
			continue
		}

		// Step 3: residue identity.
		isoformAA := isoform[mapped-1]
		if isoformAA != originalAA {
			rec.PtmFail(metrics.FailResidueMismatch)
			level.Warn(logger).Log(
				"msg", "PTM_FAIL",
				"code", metrics.FailResidueMismatch,
				"parent_id", tr.ParentID,
				"id", tr.RowID,
				"original_index", start,
				"mapped_index", mapped,
				"original_aa", string(originalAA),
				"isoform_aa", string(isoformAA),
				"shift", mapped-start,
				"vsp_count", tr.Mapper.EditCount(),
			)
			continue
		}

		st := sites[mapped]
		if st == nil {
			st = &site{aa: originalAA}
			sites[mapped] = st
		}
		st.mods = append(st.mods, PtmModification{
			ModType:         classifyModType(ft, f.Description),
			ConfidenceScore: e.MaxConfidence(f.EvidenceKeys),
		})

		rec.AddPtmMapped(1)
	}

	if len(sites) == 0 {
		return nil
	}

	positions := make([]int32, 0, len(sites))
	for pos := range sites {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })

	out := make([]PtmSite, 0, len(positions))
	for _, pos := range positions {
		st := sites[pos]
		out = append(out, PtmSite{
			SiteIndex:     pos,
			SiteAA:        string(st.aa),
			Modifications: st.mods,
		})
	}
	return out
}

func mapFailureCode(err error) metrics.FailureCode {
	switch {
	case errors.Is(err, uniprot.ErrVspDeletionEvent):
		return metrics.FailVspDeletion
	case errors.Is(err, uniprot.ErrPtmOutOfBounds):
		return metrics.FailMapperOOB
	default:
		return metrics.FailVspUnresolvable
	}
}

func classifyModType(featureTypeLower, description string) int32 {
	desc := strings.ToLower(description)
	switch {
	case featureTypeLower == "modified residue" && strings.Contains(desc, "phospho"):
		return modTypePhospho
	case featureTypeLower == "glycosylation site" && strings.Contains(desc, "n-acetylglucosamine"):
		return modTypeOGlcNAc
	default:
		return modTypeOther
	}
}
