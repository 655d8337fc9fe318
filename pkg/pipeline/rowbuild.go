package pipeline

import (
	"strings"

	kitlog "github.com/go-kit/log"

	"github.com/proteinworks/uniparquet/pkg/metrics"
	"github.com/proteinworks/uniparquet/pkg/uniprot"
)

// BuildRow serializes one transformed row into the output schema. Entry
// metadata is replicated across the rows of an isoform explosion while id,
// sequence and all coordinate columns are row-specific.
func BuildRow(tr *TransformedRow, rec metrics.Recorder, logger kitlog.Logger) Row {
	e := tr.Entry

	row := Row{
		ID:           tr.RowID,
		Sequence:     tr.Sequence,
		ParentID:     tr.ParentID,
		OrganismID:   optI32(e.OrganismID),
		EntryName:    optStr(e.EntryName),
		GeneName:     optStr(e.GeneName),
		ProteinName:  optStr(e.ProteinName),
		OrganismName: optStr(e.OrganismName),
	}
	if e.Existence != 0 {
		ex := e.Existence
		row.Existence = &ex
	}

	for i := range e.Isoforms {
		iso := &e.Isoforms[i]
		row.Isoforms = append(row.Isoforms, IsoformRef{
			IsoformID:       iso.ID,
			IsoformSequence: optStr(iso.SequenceRef),
			IsoformNote:     optStr(iso.Note),
		})
	}

	for i := range e.Features {
		f := &e.Features[i]
		row.Features = append(row.Features, FeatureRec{
			FeatureType:  f.Type,
			Description:  optStr(f.Description),
			Start:        optI32(f.Start),
			End:          optI32(f.End),
			EvidenceCode: optStr(e.ResolveEvidence(f.EvidenceKeys)),
		})
	}

	for i := range e.Locations {
		l := &e.Locations[i]
		row.Locations = append(row.Locations, LocationRec{
			Location:     l.Location,
			EvidenceCode: optStr(e.ResolveEvidence(l.EvidenceKeys)),
		})
	}

	for i := range e.Structures {
		row.Structures = append(row.Structures, StructureRec{
			DB: e.Structures[i].Database,
			ID: e.Structures[i].ID,
		})
	}

	// Coordinate-based feature columns, endpoints rewritten into this row's
	// coordinate space.
	for i := range e.ActiveSites {
		if sr, ok := buildSiteRec(tr, &e.ActiveSites[i]); ok {
			row.ActiveSites = append(row.ActiveSites, sr)
		}
	}
	for i := range e.BindingSites {
		if sr, ok := buildSiteRec(tr, &e.BindingSites[i]); ok {
			row.BindingSites = append(row.BindingSites, sr)
		}
	}
	for i := range e.MutagenesisSites {
		if sr, ok := buildSiteRec(tr, &e.MutagenesisSites[i]); ok {
			row.Mutagenesis = append(row.Mutagenesis, sr)
		}
	}
	for i := range e.MetalCoordinations {
		mc := &e.MetalCoordinations[i]
		if sr, ok := buildSiteRec(tr, &mc.SiteFeature); ok {
			row.MetalCoords = append(row.MetalCoords, MetalRec{
				ID:              sr.ID,
				Description:     sr.Description,
				Metal:           optStr(mc.Metal),
				Start:           sr.Start,
				End:             sr.End,
				EvidenceCode:    sr.EvidenceCode,
				ConfidenceScore: sr.ConfidenceScore,
			})
		}
	}
	for i := range e.Domains {
		d := &e.Domains[i]
		if sr, ok := buildSiteRec(tr, &d.SiteFeature); ok {
			name := d.DomainName
			if name == "" {
				name = d.Description
			}
			row.Domains = append(row.Domains, DomainRec{
				ID:              sr.ID,
				Description:     sr.Description,
				DomainName:      optStr(name),
				Start:           sr.Start,
				End:             sr.End,
				EvidenceCode:    sr.EvidenceCode,
				ConfidenceScore: sr.ConfidenceScore,
			})
		}
	}
	for i := range e.NaturalVariants {
		nv := &e.NaturalVariants[i]
		if sr, ok := buildSiteRec(tr, &nv.SiteFeature); ok {
			row.Variants = append(row.Variants, VariantRec{
				ID:              sr.ID,
				Description:     sr.Description,
				Original:        optStr(nv.Original),
				Variation:       optStr(nv.Variation),
				Start:           sr.Start,
				End:             sr.End,
				EvidenceCode:    sr.EvidenceCode,
				ConfidenceScore: sr.ConfidenceScore,
			})
		}
	}

	for i := range e.Subunits {
		su := &e.Subunits[i]
		row.Subunits = append(row.Subunits, SubunitRec{
			Text:            strings.TrimSpace(su.Text),
			EvidenceCode:    optStr(e.ResolveEvidence(su.EvidenceKeys)),
			ConfidenceScore: e.MaxConfidence(su.EvidenceKeys),
		})
	}

	for i := range e.Interactions {
		in := &e.Interactions[i]
		row.Interactions = append(row.Interactions, InteractRec{
			Interactant1:    optStr(in.Interactant1),
			Interactant2:    optStr(in.Interactant2),
			EvidenceCode:    optStr(e.ResolveEvidence(in.EvidenceKeys)),
			ConfidenceScore: e.MaxConfidence(in.EvidenceKeys),
		})
	}

	row.PtmSites = buildPtmSites(tr, rec, logger)

	return row
}

func buildSiteRec(tr *TransformedRow, f *uniprot.SiteFeature) (SiteRec, bool) {
	if f.Start == 0 || f.End == 0 {
		return SiteRec{}, false
	}
	start, end, ok := mapRange(tr, f.Start, f.End)
	if !ok {
		return SiteRec{}, false
	}

	e := tr.Entry
	return SiteRec{
		ID:              optStr(f.ID),
		Description:     optStr(f.Description),
		Start:           start,
		End:             end,
		EvidenceCode:    optStr(e.ResolveEvidence(f.EvidenceKeys)),
		ConfidenceScore: e.MaxConfidence(f.EvidenceKeys),
	}, true
}

// mapRange rewrites a canonical range into the row's coordinate space.
// Ranges that are malformed, exceed the canonical sequence, fail point
// mapping, leave the isoform bounds, or invert are rejected. Single-point
// ranges reuse the point answer for both endpoints.
func mapRange(tr *TransformedRow, start, end int32) (int32, int32, bool) {
	if start <= 0 || end <= 0 || end < start {
		return 0, 0, false
	}

	canonicalLen := int32(len(tr.Entry.Sequence))
	if canonicalLen <= 0 || end > canonicalLen {
		return 0, 0, false
	}

	isoLen := int32(len(tr.Sequence))
	if isoLen <= 0 {
		return 0, 0, false
	}

	mappedStart, err := tr.Mapper.MapPoint(start)
	if err != nil {
		return 0, 0, false
	}
	mappedEnd := mappedStart
	if end != start {
		if mappedEnd, err = tr.Mapper.MapPoint(end); err != nil {
			return 0, 0, false
		}
	}

	if mappedStart < 1 || mappedEnd < 1 || mappedStart > isoLen || mappedEnd > isoLen {
		return 0, 0, false
	}
	if mappedEnd < mappedStart {
		return 0, 0, false
	}
	return mappedStart, mappedEnd, true
}

