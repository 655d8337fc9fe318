package pipeline

// Row is the output schema, one row per canonical entry or resolved isoform.
// parquet-go derives the file schema from the struct tags; id and sequence
// stay PLAIN-encoded (high cardinality / very long values), everything else
// may use dictionary pages.
type Row struct {
	ID           string          `parquet:"id,plain"`
	Sequence     string          `parquet:"sequence,plain"`
	OrganismID   *int32          `parquet:"organism_id,optional"`
	Isoforms     []IsoformRef    `parquet:"isoforms,list,optional"`
	Features     []FeatureRec    `parquet:"features,list,optional"`
	Locations    []LocationRec   `parquet:"location,list,optional"`
	EntryName    *string         `parquet:"entry_name,optional"`
	GeneName     *string         `parquet:"gene_name,optional"`
	ProteinName  *string         `parquet:"protein_name,optional"`
	OrganismName *string         `parquet:"organism_name,optional"`
	Existence    *int8           `parquet:"existence,optional"`
	Structures   []StructureRec  `parquet:"structures,list,optional"`
	ParentID     string          `parquet:"parent_id"`
	PtmSites     []PtmSite       `parquet:"ptm_sites,list,optional"`
	ActiveSites  []SiteRec       `parquet:"active_sites,list,optional"`
	BindingSites []SiteRec       `parquet:"binding_sites,list,optional"`
	MetalCoords  []MetalRec      `parquet:"metal_coordinations,list,optional"`
	Mutagenesis  []SiteRec       `parquet:"mutagenesis_sites,list,optional"`
	Domains      []DomainRec     `parquet:"domains,list,optional"`
	Variants     []VariantRec    `parquet:"natural_variants,list,optional"`
	Subunits     []SubunitRec    `parquet:"subunits,list,optional"`
	Interactions []InteractRec   `parquet:"interactions,list,optional"`
}

type IsoformRef struct {
	IsoformID       string  `parquet:"isoform_id"`
	IsoformSequence *string `parquet:"isoform_sequence,optional"`
	IsoformNote     *string `parquet:"isoform_note,optional"`
}

type FeatureRec struct {
	FeatureType  string  `parquet:"feature_type"`
	Description  *string `parquet:"description,optional"`
	Start        *int32  `parquet:"start,optional"`
	End          *int32  `parquet:"end,optional"`
	EvidenceCode *string `parquet:"evidence_code,optional"`
}

type LocationRec struct {
	Location     string  `parquet:"location"`
	EvidenceCode *string `parquet:"evidence_code,optional"`
}

type StructureRec struct {
	DB string `parquet:"db"`
	ID string `parquet:"id"`
}

type PtmModification struct {
	ModType         int32   `parquet:"mod_type"`
	ConfidenceScore float32 `parquet:"confidence_score"`
}

type PtmSite struct {
	SiteIndex     int32             `parquet:"site_index"`
	SiteAA        string            `parquet:"site_aa"`
	Modifications []PtmModification `parquet:"modifications,list,optional"`
}

// SiteRec carries a coordinate-based feature with its endpoints already
// mapped into the row's coordinate space.
type SiteRec struct {
	ID              *string `parquet:"id,optional"`
	Description     *string `parquet:"description,optional"`
	Start           int32   `parquet:"start"`
	End             int32   `parquet:"end"`
	EvidenceCode    *string `parquet:"evidence_code,optional"`
	ConfidenceScore float32 `parquet:"confidence_score"`
}

type MetalRec struct {
	ID              *string `parquet:"id,optional"`
	Description     *string `parquet:"description,optional"`
	Metal           *string `parquet:"metal,optional"`
	Start           int32   `parquet:"start"`
	End             int32   `parquet:"end"`
	EvidenceCode    *string `parquet:"evidence_code,optional"`
	ConfidenceScore float32 `parquet:"confidence_score"`
}

type DomainRec struct {
	ID              *string `parquet:"id,optional"`
	Description     *string `parquet:"description,optional"`
	DomainName      *string `parquet:"domain_name,optional"`
	Start           int32   `parquet:"start"`
	End             int32   `parquet:"end"`
	EvidenceCode    *string `parquet:"evidence_code,optional"`
	ConfidenceScore float32 `parquet:"confidence_score"`
}

type VariantRec struct {
	ID              *string `parquet:"id,optional"`
	Description     *string `parquet:"description,optional"`
	Original        *string `parquet:"original,optional"`
	Variation       *string `parquet:"variation,optional"`
	Start           int32   `parquet:"start"`
	End             int32   `parquet:"end"`
	EvidenceCode    *string `parquet:"evidence_code,optional"`
	ConfidenceScore float32 `parquet:"confidence_score"`
}

type SubunitRec struct {
	Text            string  `parquet:"text"`
	EvidenceCode    *string `parquet:"evidence_code,optional"`
	ConfidenceScore float32 `parquet:"confidence_score"`
}

type InteractRec struct {
	Interactant1    *string `parquet:"interactant_id_1,optional"`
	Interactant2    *string `parquet:"interactant_id_2,optional"`
	EvidenceCode    *string `parquet:"evidence_code,optional"`
	ConfidenceScore float32 `parquet:"confidence_score"`
}

// optStr boxes a non-empty string; empty serializes as null.
func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optI32(v int32) *int32 {
	if v == 0 {
		return nil
	}
	return &v
}

// MemorySize approximates the in-memory footprint of a row for the
// bytes-written counter: string payloads plus a flat per-record overhead.
func (r *Row) MemorySize() uint64 {
	const recOverhead = 16

	n := uint64(len(r.ID) + len(r.Sequence) + len(r.ParentID))
	str := func(s *string) {
		if s != nil {
			n += uint64(len(*s)) + recOverhead
		}
	}
	str(r.EntryName)
	str(r.GeneName)
	str(r.ProteinName)
	str(r.OrganismName)

	for i := range r.Isoforms {
		n += uint64(len(r.Isoforms[i].IsoformID)) + recOverhead
		str(r.Isoforms[i].IsoformSequence)
		str(r.Isoforms[i].IsoformNote)
	}
	for i := range r.Features {
		n += uint64(len(r.Features[i].FeatureType)) + recOverhead
		str(r.Features[i].Description)
		str(r.Features[i].EvidenceCode)
	}
	for i := range r.Locations {
		n += uint64(len(r.Locations[i].Location)) + recOverhead
		str(r.Locations[i].EvidenceCode)
	}
	for i := range r.Structures {
		n += uint64(len(r.Structures[i].DB)+len(r.Structures[i].ID)) + recOverhead
	}
	for i := range r.PtmSites {
		n += uint64(len(r.PtmSites[i].SiteAA)) + recOverhead
		n += uint64(len(r.PtmSites[i].Modifications)) * 8
	}
	sites := func(recs []SiteRec) {
		for i := range recs {
			n += recOverhead
			str(recs[i].ID)
			str(recs[i].Description)
			str(recs[i].EvidenceCode)
		}
	}
	sites(r.ActiveSites)
	sites(r.BindingSites)
	sites(r.Mutagenesis)
	for i := range r.MetalCoords {
		n += recOverhead
		str(r.MetalCoords[i].ID)
		str(r.MetalCoords[i].Description)
		str(r.MetalCoords[i].Metal)
		str(r.MetalCoords[i].EvidenceCode)
	}
	for i := range r.Domains {
		n += recOverhead
		str(r.Domains[i].ID)
		str(r.Domains[i].Description)
		str(r.Domains[i].DomainName)
		str(r.Domains[i].EvidenceCode)
	}
	for i := range r.Variants {
		n += recOverhead
		str(r.Variants[i].ID)
		str(r.Variants[i].Description)
		str(r.Variants[i].Original)
		str(r.Variants[i].Variation)
		str(r.Variants[i].EvidenceCode)
	}
	for i := range r.Subunits {
		n += uint64(len(r.Subunits[i].Text)) + recOverhead
		str(r.Subunits[i].EvidenceCode)
	}
	for i := range r.Interactions {
		n += recOverhead
		str(r.Interactions[i].Interactant1)
		str(r.Interactions[i].Interactant2)
		str(r.Interactions[i].EvidenceCode)
	}
	return n
}
