package uniprot

// state tracks where the dispatcher is inside an entry. Transitions follow
// the UniProt XML structure: root -> entry -> nested elements -> entry -> root.
type state int

const (
	stateRoot state = iota
	stateEntry
	stateEntryName
	stateAccession
	stateSequence
	stateOrganism
	stateOrganismName
	stateOrganismDbRef
	stateGene
	stateGeneName
	stateProtein
	stateRecommendedName
	stateFullName
	stateFeature
	stateFeatureOriginal
	stateFeatureVariation
	stateFeatureLocation
	stateFeaturePosition
	stateFeatureBegin
	stateFeatureEnd
	stateComment
	stateCommentLocationGroup
	stateCommentLocation
	stateCommentSubunit
	stateCommentSubunitText
	stateCommentInteraction
	stateCommentIsoform
	stateCommentIsoformID
	stateCommentIsoformSequence
	stateCommentIsoformNote
	stateEvidence
)

// capturesText reports whether character data should accumulate in the
// shared text buffer for harvest at the end tag.
func (s state) capturesText() bool {
	switch s {
	case stateEntryName,
		stateAccession,
		stateSequence,
		stateOrganismName,
		stateGeneName,
		stateFullName,
		stateFeatureOriginal,
		stateFeatureVariation,
		stateCommentLocation,
		stateCommentSubunitText,
		stateCommentIsoformID,
		stateCommentIsoformNote:
		return true
	}
	return false
}
