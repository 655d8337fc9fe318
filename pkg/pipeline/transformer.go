package pipeline

import (
	"strings"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/proteinworks/uniparquet/pkg/metrics"
	"github.com/proteinworks/uniparquet/pkg/uniprot"
)

// ErrSidecarRequired is returned when an entry carries isoforms but no FASTA
// sidecar was configured. It is a configuration error and fatal to the file.
var ErrSidecarRequired = errors.New("fasta sidecar is required when entries have isoforms")

// TransformedRow is the row material for one output record. The entry is
// shared read-only across the rows it expands into and is valid only until
// the builders have copied from it.
type TransformedRow struct {
	Entry    *uniprot.ParsedEntry
	RowID    string
	ParentID string
	Sequence string
	Mapper   *uniprot.CoordinateMapper
}

// Transformer expands finalized entries into canonical + isoform rows,
// resolving isoform sequences through the sidecar map.
type Transformer struct {
	rec     metrics.Recorder
	logger  kitlog.Logger
	sidecar map[string]string // nil when not configured
}

func NewTransformer(rec metrics.Recorder, logger kitlog.Logger, sidecar map[string]string) *Transformer {
	return &Transformer{rec: rec, logger: logger, sidecar: sidecar}
}

// Transform returns the ordered rows for one entry: the canonical row first,
// then one row per isoform whose sequence resolves through the sidecar.
// Isoforms missing from the sidecar are skipped with a diagnostic.
func (t *Transformer) Transform(e *uniprot.ParsedEntry) ([]TransformedRow, error) {
	t.rec.AddFeatures(uint64(len(e.Features)))
	t.rec.AddIsoforms(uint64(len(e.Isoforms)))

	rows := make([]TransformedRow, 0, 1+len(e.Isoforms))
	rows = append(rows, TransformedRow{
		Entry:    e,
		RowID:    e.Accession,
		ParentID: e.Accession,
		Sequence: e.Sequence,
		Mapper:   uniprot.NewMapper(e, nil),
	})

	if len(e.Isoforms) == 0 {
		return rows, nil
	}
	if t.sidecar == nil {
		return nil, errors.Wrapf(ErrSidecarRequired, "entry %s", e.Accession)
	}

	for i := range e.Isoforms {
		iso := &e.Isoforms[i]
		isoformID := CanonicalIsoformID(iso)

		seq, ok := t.sidecar[isoformID]
		if !ok {
			level.Warn(t.logger).Log(
				"code", "ISOFORM_SEQ_MISSING",
				"parent_id", e.ParentID,
				"id", e.Accession,
				"isoform_id", isoformID,
			)
			continue
		}

		rows = append(rows, TransformedRow{
			Entry:    e,
			RowID:    isoformID,
			ParentID: e.ParentID,
			Sequence: seq,
			Mapper:   uniprot.NewMapper(e, iso.VspIDs),
		})
	}

	return rows, nil
}

// CanonicalIsoformID derives the sidecar lookup key for an isoform: the
// first token of the displayed sequence ref when it looks like a UniProt
// isoform accession (contains a dash, not a VSP id), otherwise the first
// token of the isoform's local id.
func CanonicalIsoformID(iso *uniprot.Isoform) string {
	if ref := iso.SequenceRef; ref != "" && !strings.HasPrefix(ref, "VSP_") && strings.Contains(ref, "-") {
		return firstToken(ref)
	}
	return firstToken(iso.ID)
}

func firstToken(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return s
}
