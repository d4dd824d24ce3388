package docparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

var ErrUnsupported = errors.New("no local text extractor for this format")

// Extract returns plain text for formats that can be read without a
// language model: text/plain and .docx. Other formats return ErrUnsupported.
func Extract(contentType string, data []byte) (string, error) {
	switch contentType {
	case "text/plain":
		if !utf8.Valid(data) {
			data = bytes.ToValidUTF8(data, []byte(" "))
		}
		return Normalize(string(data)), nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return extractDOCX(data)
	}
	return "", ErrUnsupported
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return documentText(rc)
	}
	return "", errors.New("docx: word/document.xml missing")
}

// documentText walks WordprocessingML collecting w:t runs, breaking lines on
// paragraphs and explicit breaks.
func documentText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(el)
			}
		}
	}
	return Normalize(b.String()), nil
}

var (
	spaceRun = regexp.MustCompile(`[ \t\f\v]+`)
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses horizontal whitespace and runs of blank lines.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = spaceRun.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = blankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
