package uniprot

import "encoding/xml"

// Feature handlers latch a feature context on <feature> and route location
// coordinates and original/variation text into the current buffer. At
// </feature> the buffer is appended to the generic list and, when the
// context matches, to the corresponding typed subset.

func (p *Parser) startFeatureElement(t xml.StartElement) (state, error) {
	s := p.scratch
	s.curFeature = Feature{
		ID:           attr(t, "id"),
		Type:         attr(t, "type"),
		Description:  attr(t, "description"),
		EvidenceKeys: parseEvidenceRefs(attr(t, "evidence")),
	}
	s.curContext = featureContextFor(s.curFeature.Type)
	return stateFeature, nil
}

func (p *Parser) startFeature(t xml.StartElement) (state, error) {
	s := p.scratch

	switch p.st {
	case stateFeature:
		switch t.Name.Local {
		case "original":
			s.resetText()
			return stateFeatureOriginal, nil
		case "variation":
			s.resetText()
			return stateFeatureVariation, nil
		case "location":
			return stateFeatureLocation, nil
		}
		return stateFeature, nil

	case stateFeatureLocation:
		switch t.Name.Local {
		case "position":
			pos, ok, err := parseCoord(t, "position")
			if err != nil {
				return p.st, err
			}
			if ok {
				s.curFeature.Start = pos
				s.curFeature.End = pos
			}
			return stateFeaturePosition, nil
		case "begin":
			pos, ok, err := parseCoord(t, "position")
			if err != nil {
				return p.st, err
			}
			if ok {
				s.curFeature.Start = pos
			}
			return stateFeatureBegin, nil
		case "end":
			pos, ok, err := parseCoord(t, "position")
			if err != nil {
				return p.st, err
			}
			if ok {
				s.curFeature.End = pos
			}
			return stateFeatureEnd, nil
		}
		return stateFeatureLocation, nil
	}

	return p.st, nil
}

func (p *Parser) endFeature(t xml.EndElement) (state, error) {
	s := p.scratch

	switch p.st {
	case stateFeature:
		if t.Name.Local == "feature" {
			s.finishFeature()
			return stateEntry, nil
		}
		return stateFeature, nil

	case stateFeatureOriginal:
		if t.Name.Local == "original" {
			s.curFeature.Original = s.takeText()
			return stateFeature, nil
		}

	case stateFeatureVariation:
		if t.Name.Local == "variation" {
			s.curFeature.Variation = s.takeText()
			return stateFeature, nil
		}

	case stateFeatureLocation:
		if t.Name.Local == "location" {
			return stateFeature, nil
		}

	case stateFeaturePosition:
		if t.Name.Local == "position" {
			return stateFeatureLocation, nil
		}

	case stateFeatureBegin:
		if t.Name.Local == "begin" {
			return stateFeatureLocation, nil
		}

	case stateFeatureEnd:
		if t.Name.Local == "end" {
			return stateFeatureLocation, nil
		}
	}

	return p.st, nil
}

// finishFeature appends the latched feature once to the generic list and
// once to the typed subset for its context.
func (s *EntryScratch) finishFeature() {
	f := s.curFeature
	s.Features = append(s.Features, f)

	site := SiteFeature{
		ID:           f.ID,
		Description:  f.Description,
		Start:        f.Start,
		End:          f.End,
		EvidenceKeys: f.EvidenceKeys,
	}

	switch s.curContext {
	case ContextActiveSite:
		s.ActiveSites = append(s.ActiveSites, site)
	case ContextBindingSite:
		s.BindingSites = append(s.BindingSites, site)
	case ContextMetalCoordination:
		s.MetalCoordinations = append(s.MetalCoordinations, MetalCoordination{SiteFeature: site})
	case ContextMutagenesis:
		s.MutagenesisSites = append(s.MutagenesisSites, site)
	case ContextDomain:
		s.Domains = append(s.Domains, Domain{SiteFeature: site})
	case ContextNaturalVariant:
		s.NaturalVariants = append(s.NaturalVariants, NaturalVariant{
			SiteFeature: site,
			Original:    f.Original,
			Variation:   f.Variation,
		})
	}

	s.curFeature = Feature{}
	s.curContext = ContextGeneric
}
