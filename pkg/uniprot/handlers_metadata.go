package uniprot

import "encoding/xml"

// Metadata handlers cover the entry frame: accessions, names, organism,
// protein existence, entry-level cross references, and the evidence map.

func (p *Parser) startMetadata(t xml.StartElement) (state, error) {
	s := p.scratch

	switch p.st {
	case stateRoot:
		if t.Name.Local == "entry" {
			s.Clear()
			return stateEntry, nil
		}
		return stateRoot, nil

	case stateEntry:
		switch t.Name.Local {
		case "name":
			s.resetText()
			return stateEntryName, nil
		case "accession":
			s.resetText()
			return stateAccession, nil
		case "sequence":
			s.resetText()
			return stateSequence, nil
		case "organism":
			return stateOrganism, nil
		case "gene":
			return stateGene, nil
		case "protein":
			return stateProtein, nil
		case "proteinExistence":
			s.Existence = mapExistence(attr(t, "type"))
			return stateEntry, nil
		case "dbReference":
			if db := attr(t, "type"); db == "PDB" || db == "AlphaFoldDB" {
				if id := attr(t, "id"); id != "" {
					s.Structures = append(s.Structures, StructureRef{Database: db, ID: id})
				}
			}
			return stateEntry, nil
		case "evidence":
			if key, eco := attr(t, "key"), attr(t, "type"); key != "" && eco != "" {
				s.EvidenceMap[key] = eco
			}
			return stateEvidence, nil
		case "feature":
			return p.startFeatureElement(t)
		case "comment":
			return p.startCommentElement(t), nil
		}
		return stateEntry, nil

	case stateOrganism:
		switch t.Name.Local {
		case "name":
			if attr(t, "type") == "scientific" {
				s.resetText()
				return stateOrganismName, nil
			}
			return stateOrganism, nil
		case "dbReference":
			if attr(t, "type") == "NCBI Taxonomy" {
				id, ok, err := parseCoord(t, "id")
				if err != nil {
					return p.st, err
				}
				if ok {
					s.OrganismID = id
				}
			}
			return stateOrganismDbRef, nil
		}
		return stateOrganism, nil

	case stateGene:
		if t.Name.Local == "name" && attr(t, "type") == "primary" {
			s.resetText()
			return stateGeneName, nil
		}
		return stateGene, nil

	case stateProtein:
		if t.Name.Local == "recommendedName" {
			return stateRecommendedName, nil
		}
		return stateProtein, nil

	case stateRecommendedName:
		if t.Name.Local == "fullName" {
			s.resetText()
			return stateFullName, nil
		}
		return stateRecommendedName, nil
	}

	return p.st, nil
}

func (p *Parser) endMetadata(t xml.EndElement, emit EmitFunc) (state, error) {
	s := p.scratch

	switch p.st {
	case stateEntry:
		if t.Name.Local == "entry" {
			if err := emit(&s.ParsedEntry); err != nil {
				return p.st, err
			}
			return stateRoot, nil
		}
		return stateEntry, nil

	case stateEntryName:
		if t.Name.Local == "name" {
			s.EntryName = s.takeText()
			return stateEntry, nil
		}

	case stateAccession:
		if t.Name.Local == "accession" {
			if !s.hasPrimaryAccession {
				s.Accession = s.takeText()
				s.ParentID = s.Accession
				s.hasPrimaryAccession = true
			} else {
				// Secondary accessions are read and discarded.
				s.resetText()
			}
			return stateEntry, nil
		}

	case stateSequence:
		if t.Name.Local == "sequence" {
			s.Sequence = stripWhitespace(s.takeText())
			return stateEntry, nil
		}

	case stateOrganismName:
		if t.Name.Local == "name" {
			s.OrganismName = s.takeText()
			return stateOrganism, nil
		}

	case stateOrganismDbRef:
		if t.Name.Local == "dbReference" {
			return stateOrganism, nil
		}

	case stateOrganism:
		if t.Name.Local == "organism" {
			return stateEntry, nil
		}

	case stateGeneName:
		if t.Name.Local == "name" {
			s.GeneName = s.takeText()
			return stateGene, nil
		}

	case stateGene:
		if t.Name.Local == "gene" {
			return stateEntry, nil
		}

	case stateFullName:
		if t.Name.Local == "fullName" {
			s.ProteinName = s.takeText()
			return stateRecommendedName, nil
		}

	case stateRecommendedName:
		if t.Name.Local == "recommendedName" {
			return stateProtein, nil
		}

	case stateProtein:
		if t.Name.Local == "protein" {
			return stateEntry, nil
		}

	case stateEvidence:
		if t.Name.Local == "evidence" {
			return stateEntry, nil
		}
	}

	return p.st, nil
}
