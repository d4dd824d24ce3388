package llm

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type Schema string

const (
	SchemaCVAnalysis        Schema = "cv_analysis"
	SchemaJobAnalysis       Schema = "job_analysis"
	SchemaInterviewQuestion Schema = "interview_question"
	SchemaInterviewReport   Schema = "interview_report"
	SchemaJobImport         Schema = "job_import"
)

var (
	schemaMu    sync.Mutex
	schemaCache = map[Schema]*gojsonschema.Schema{}
)

func compiled(s Schema) (*gojsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if c, ok := schemaCache[s]; ok {
		return c, nil
	}
	raw, err := schemaFS.ReadFile("schemas/" + string(s) + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", s, err)
	}
	c, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", s, err)
	}
	schemaCache[s] = c
	return c, nil
}

// ValidationError lists the schema violations of a model response.
type ValidationError struct {
	Schema Schema
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("response does not match %s: %s", e.Schema, strings.Join(e.Errors, "; "))
}

// Validate checks raw JSON against one of the embedded response schemas.
func Validate(s Schema, raw string) error {
	c, err := compiled(s)
	if err != nil {
		return err
	}
	res, err := c.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if res.Valid() {
		return nil
	}
	verr := &ValidationError{Schema: s}
	for _, e := range res.Errors() {
		verr.Errors = append(verr.Errors, e.String())
	}
	return verr
}
