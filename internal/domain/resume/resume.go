package resume

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("resume not found")
	ErrUnsupportedType = errors.New("unsupported resume file type")
	ErrEmptyFile       = errors.New("empty resume file")
	ErrTooLarge        = errors.New("resume file too large")
)

type ParseStatus string

const (
	StatusPending    ParseStatus = "pending"
	StatusProcessing ParseStatus = "processing"
	StatusParsed     ParseStatus = "parsed"
	StatusFailed     ParseStatus = "failed"
)

// InFlight is true while the parse task has not finished.
func (s ParseStatus) InFlight() bool {
	return s == StatusPending || s == StatusProcessing
}

const (
	TypePDF  = "application/pdf"
	TypeDOC  = "application/msword"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeText = "text/plain"
)

var extByType = map[string]string{
	TypePDF:  ".pdf",
	TypeDOC:  ".doc",
	TypeDOCX: ".docx",
	TypeText: ".txt",
}

// DetectType resolves the content type from the declared header, falling
// back to the file extension. Browsers often send octet-stream for .docx.
func DetectType(declared, fileName string) (string, error) {
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		if _, ok := extByType[mt]; ok {
			return mt, nil
		}
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return TypePDF, nil
	case ".doc":
		return TypeDOC, nil
	case ".docx":
		return TypeDOCX, nil
	case ".txt":
		return TypeText, nil
	}
	return "", ErrUnsupportedType
}

func Extension(contentType string) string {
	return extByType[contentType]
}

type Resume struct {
	ID          uuid.UUID   `json:"id"`
	StudentID   uuid.UUID   `json:"student_id"`
	FileName    string      `json:"file_name"`
	FilePath    string      `json:"-"`
	ContentType string      `json:"content_type"`
	SizeBytes   int64       `json:"size_bytes"`
	SHA256      string      `json:"sha256"`
	IsPrimary   bool        `json:"is_primary"`
	ParsedText  string      `json:"-"`
	Status      ParseStatus `json:"parse_status"`
	ParseError  string      `json:"parse_error,omitempty"`
	HasVector   bool        `json:"has_embedding"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
