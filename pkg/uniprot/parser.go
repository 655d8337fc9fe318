package uniprot

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

// EmitFunc receives each finalized entry in document order. The entry is
// only valid for the duration of the call; returning an error aborts the
// parse.
type EmitFunc func(*ParsedEntry) error

// Parser drives the pull-based token loop over one document at a time. It
// owns the scratch buffers and is re-entrant per file, but not safe for
// concurrent use.
type Parser struct {
	scratch *EntryScratch
	st      state
}

func NewParser() *Parser {
	return &Parser{scratch: NewEntryScratch()}
}

// Parse consumes the document and invokes emit once per completed <entry>.
// Malformed XML, bad UTF-8, or invalid integer attributes terminate the
// parse with a DecodeError; no partial entries are emitted.
func (p *Parser) Parse(r io.Reader, emit EmitFunc) error {
	dec := xml.NewDecoder(r)
	p.st = stateRoot
	p.scratch.Clear()

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return decodeErrorf(err, "reading XML token")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.st, err = p.handleStart(t)
		case xml.CharData:
			if p.st.capturesText() {
				p.scratch.textBuf = append(p.scratch.textBuf, t...)
			}
		case xml.EndElement:
			p.st, err = p.handleEnd(t, emit)
		}
		if err != nil {
			return err
		}
	}

	if p.st != stateRoot {
		return decodeErrorf(nil, "document truncated inside an entry")
	}
	return nil
}

func (p *Parser) handleStart(t xml.StartElement) (state, error) {
	switch p.st {
	case stateFeature, stateFeatureOriginal, stateFeatureVariation,
		stateFeatureLocation, stateFeaturePosition, stateFeatureBegin, stateFeatureEnd:
		return p.startFeature(t)
	case stateComment, stateCommentLocationGroup, stateCommentLocation,
		stateCommentSubunit, stateCommentSubunitText, stateCommentInteraction,
		stateCommentIsoform, stateCommentIsoformID, stateCommentIsoformSequence,
		stateCommentIsoformNote:
		return p.startComment(t)
	default:
		return p.startMetadata(t)
	}
}

func (p *Parser) handleEnd(t xml.EndElement, emit EmitFunc) (state, error) {
	switch p.st {
	case stateFeature, stateFeatureOriginal, stateFeatureVariation,
		stateFeatureLocation, stateFeaturePosition, stateFeatureBegin, stateFeatureEnd:
		return p.endFeature(t)
	case stateComment, stateCommentLocationGroup, stateCommentLocation,
		stateCommentSubunit, stateCommentSubunitText, stateCommentInteraction,
		stateCommentIsoform, stateCommentIsoformID, stateCommentIsoformSequence,
		stateCommentIsoformNote:
		return p.endComment(t)
	default:
		return p.endMetadata(t, emit)
	}
}

// attr returns the value of the named attribute, or "" when absent.
func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func parseCoord(t xml.StartElement, name string) (int32, bool, error) {
	v := attr(t, name)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, false, decodeErrorf(err, "invalid %s attribute %q on <%s>", name, v, t.Name.Local)
	}
	return int32(n), true, nil
}

// parseEvidenceRefs splits the space-separated evidence key attribute.
func parseEvidenceRefs(refs string) []string {
	if refs == "" {
		return nil
	}
	return strings.Fields(refs)
}

func mapExistence(t string) int8 {
	switch t {
	case "evidence at protein level":
		return 1
	case "evidence at transcript level":
		return 2
	case "inferred from homology":
		return 3
	case "predicted":
		return 4
	case "uncertain":
		return 5
	default:
		return 0
	}
}

func stripWhitespace(s string) string {
	if !strings.ContainsAny(s, " \t\n\r") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
