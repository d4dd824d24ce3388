package docparse

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_DOCX(t *testing.T) {
	data := buildDOCX(t,
		`<w:p><w:r><w:t>Education</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t xml:space="preserve">BSc </w:t></w:r><w:r><w:t>Computer Science</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Skills</w:t><w:br/><w:t>Go, SQL</w:t></w:r></w:p>`)

	got, err := Extract("application/vnd.openxmlformats-officedocument.wordprocessingml.document", data)
	require.NoError(t, err)
	assert.Equal(t, "Education\nBSc Computer Science\nSkills\nGo, SQL", got)
}

func TestExtract_Text(t *testing.T) {
	got, err := Extract("text/plain", []byte("  Name\r\n\r\n\r\n\r\nSkills:\t Go  "))
	require.NoError(t, err)
	assert.Equal(t, "Name\n\nSkills: Go", got)
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := Extract("application/pdf", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Extract("application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("not a zip"))
	assert.Error(t, err)
}
