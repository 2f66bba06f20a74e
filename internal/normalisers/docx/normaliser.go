package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const documentPart = "word/document.xml"

// maxDocumentSize bounds the decompressed main part.
const maxDocumentSize = 256 << 20

// Normaliser handles DOCX filings.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// Normalise extracts the text of a DOCX filing.
func (n *Normaliser) Normalise(ctx context.Context, raw []byte) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx archive: %v", domain.ErrInvalidInput, err)
	}

	for _, f := range reader.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: opening %s: %v", domain.ErrInvalidInput, documentPart, err)
		}
		defer rc.Close()
		return extractText(ctx, io.LimitReader(rc, maxDocumentSize))
	}
	return "", fmt.Errorf("%w: %s missing", domain.ErrInvalidInput, documentPart)
}

// extractText walks the WordprocessingML token stream.
func extractText(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out    strings.Builder
		line   strings.Builder
		inText bool
		inCell int
		cells  []string
	)
	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			out.WriteString(s)
		}
		out.WriteByte('\n')
		line.Reset()
	}

	for n := 0; ; n++ {
		if n%4096 == 0 && ctx.Err() != nil {
			return "", ctx.Err()
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidInput, documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				line.WriteByte('\t')
			case "br", "cr":
				if isPageBreak(t) {
					flush()
					break
				}
				line.WriteByte(' ')
			case "tc":
				inCell++
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inCell > 0 {
					line.WriteByte(' ')
				} else {
					flush()
				}
			case "tc":
				inCell--
				cells = append(cells, strings.Join(strings.Fields(line.String()), " "))
				line.Reset()
			case "tr":
				line.WriteString(strings.Join(cells, "\t"))
				cells = cells[:0]
				flush()
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}
	flush()

	return collapseBlankLines(out.String()), nil
}

func isPageBreak(t xml.StartElement) bool {
	for _, a := range t.Attr {
		if a.Name.Local == "type" && a.Value == "page" {
			return true
		}
	}
	return false
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := 0
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
