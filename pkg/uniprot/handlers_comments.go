package uniprot

import (
	"encoding/xml"
	"strings"
)

// Comment handlers dispatch on the comment's type attribute: subcellular
// locations, subunit text, interaction pairs, and alternative-products
// isoforms. Unknown comment types are skipped to their end tag.

func (p *Parser) startCommentElement(t xml.StartElement) state {
	s := p.scratch

	switch attr(t, "type") {
	case "subcellular location":
		return stateCommentLocationGroup
	case "alternative products":
		return stateCommentIsoform
	case "subunit":
		s.curSubunit = SubunitComment{EvidenceKeys: parseEvidenceRefs(attr(t, "evidence"))}
		return stateCommentSubunit
	case "interaction":
		s.curInteraction = Interaction{EvidenceKeys: parseEvidenceRefs(attr(t, "evidence"))}
		return stateCommentInteraction
	default:
		return stateComment
	}
}

func (p *Parser) startComment(t xml.StartElement) (state, error) {
	s := p.scratch

	switch p.st {
	case stateCommentLocationGroup:
		switch t.Name.Local {
		case "subcellularLocation":
			s.curLocation = LocationComment{}
			return stateCommentLocationGroup, nil
		case "location":
			if ev := attr(t, "evidence"); ev != "" {
				s.curLocation.EvidenceKeys = parseEvidenceRefs(ev)
			}
			s.resetText()
			return stateCommentLocation, nil
		}
		return stateCommentLocationGroup, nil

	case stateCommentSubunit:
		if t.Name.Local == "text" {
			// Evidence on <text> wins over comment-level evidence.
			if ev := attr(t, "evidence"); ev != "" {
				s.curSubunit.EvidenceKeys = parseEvidenceRefs(ev)
			}
			s.resetText()
			return stateCommentSubunitText, nil
		}
		return stateCommentSubunit, nil

	case stateCommentInteraction:
		if t.Name.Local == "dbReference" && strings.HasPrefix(attr(t, "type"), "UniProtKB") {
			if id := attr(t, "id"); id != "" {
				s.addInteractant(id)
			}
		}
		return stateCommentInteraction, nil

	case stateCommentIsoform:
		switch t.Name.Local {
		case "isoform":
			s.curIsoform = Isoform{}
			return stateCommentIsoform, nil
		case "id":
			s.resetText()
			return stateCommentIsoformID, nil
		case "sequence":
			s.captureIsoformSequence(t)
			return stateCommentIsoformSequence, nil
		case "note":
			s.resetText()
			return stateCommentIsoformNote, nil
		}
		return stateCommentIsoform, nil
	}

	return p.st, nil
}

func (p *Parser) endComment(t xml.EndElement) (state, error) {
	s := p.scratch

	switch p.st {
	case stateComment:
		if t.Name.Local == "comment" {
			return stateEntry, nil
		}

	case stateCommentLocationGroup:
		switch t.Name.Local {
		case "subcellularLocation":
			s.Locations = append(s.Locations, s.curLocation)
			s.curLocation = LocationComment{}
			return stateCommentLocationGroup, nil
		case "comment":
			return stateEntry, nil
		}
		return stateCommentLocationGroup, nil

	case stateCommentLocation:
		if t.Name.Local == "location" {
			s.curLocation.Location = s.takeText()
			return stateCommentLocationGroup, nil
		}

	case stateCommentSubunitText:
		if t.Name.Local == "text" {
			s.curSubunit.Text = s.takeText()
			return stateCommentSubunit, nil
		}

	case stateCommentSubunit:
		if t.Name.Local == "comment" {
			if strings.TrimSpace(s.curSubunit.Text) != "" {
				s.Subunits = append(s.Subunits, s.curSubunit)
			}
			s.curSubunit = SubunitComment{}
			return stateEntry, nil
		}
		return stateCommentSubunit, nil

	case stateCommentInteraction:
		if t.Name.Local == "comment" {
			if s.curInteraction.Interactant1 != "" || s.curInteraction.Interactant2 != "" {
				s.Interactions = append(s.Interactions, s.curInteraction)
			}
			s.curInteraction = Interaction{}
			return stateEntry, nil
		}
		return stateCommentInteraction, nil

	case stateCommentIsoformID:
		if t.Name.Local == "id" {
			s.curIsoform.ID = s.takeText()
			return stateCommentIsoform, nil
		}

	case stateCommentIsoformSequence:
		if t.Name.Local == "sequence" {
			return stateCommentIsoform, nil
		}

	case stateCommentIsoformNote:
		if t.Name.Local == "note" {
			s.curIsoform.Note = s.takeText()
			return stateCommentIsoform, nil
		}

	case stateCommentIsoform:
		switch t.Name.Local {
		case "isoform":
			s.Isoforms = append(s.Isoforms, s.curIsoform)
			s.curIsoform = Isoform{}
			return stateCommentIsoform, nil
		case "comment":
			return stateEntry, nil
		}
		return stateCommentIsoform, nil
	}

	return p.st, nil
}

// addInteractant fills the next free partner slot. A third UniProtKB
// partner flushes the current pair and starts a new one carrying the same
// evidence, so every emitted interaction is a single pair.
func (s *EntryScratch) addInteractant(id string) {
	switch {
	case s.curInteraction.Interactant1 == "":
		s.curInteraction.Interactant1 = id
	case s.curInteraction.Interactant2 == "":
		s.curInteraction.Interactant2 = id
	default:
		keep := s.curInteraction.EvidenceKeys
		s.Interactions = append(s.Interactions, s.curInteraction)
		s.curInteraction = Interaction{Interactant1: id, EvidenceKeys: keep}
	}
}

// captureIsoformSequence records the refs on an isoform <sequence> tag:
// described / VSP_ refs scope splice-variant edits to this isoform, while
// the displayed accession-like ref keys the FASTA sidecar lookup. The ref
// attribute may list several whitespace-separated ids.
func (s *EntryScratch) captureIsoformSequence(t xml.StartElement) {
	seqType := attr(t, "type")
	for _, ref := range strings.Fields(attr(t, "ref")) {
		if seqType == "described" || strings.HasPrefix(ref, "VSP_") {
			s.curIsoform.VspIDs = append(s.curIsoform.VspIDs, ref)
			continue
		}
		// Keep the most useful non-VSP ref; never overwrite an
		// accession-like ref with a later one.
		if s.curIsoform.SequenceRef == "" || strings.HasPrefix(s.curIsoform.SequenceRef, "VSP_") {
			s.curIsoform.SequenceRef = ref
		}
	}
}
