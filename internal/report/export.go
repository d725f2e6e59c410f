package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"researcher/internal/domain"
)

// Record is the exported research result.
type Record struct {
	Question       string       `json:"question"`
	Plan           domain.Plan  `json:"plan"`
	Hits           []domain.Hit `json:"hits"`
	ReportMarkdown string       `json:"report_markdown"`
}

const recordSchema = `{
  "type": "object",
  "required": ["question", "plan", "hits", "report_markdown"],
  "properties": {
    "question": {"type": "string", "minLength": 1},
    "plan": {"type": "array", "items": {"type": "string"}},
    "hits": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["text", "source", "score"],
        "properties": {
          "text": {"type": "string"},
          "source": {"type": "string"},
          "score": {"type": ["number", "null"]}
        }
      }
    },
    "report_markdown": {"type": "string"}
  }
}`

// Marshal encodes rec as indented JSON without escaping non-ASCII or HTML
// characters, and checks it against the export schema.
func Marshal(rec Record) ([]byte, error) {
	if rec.Plan == nil {
		rec.Plan = domain.Plan{}
	}
	if rec.Hits == nil {
		rec.Hits = []domain.Hit{}
	}
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	data := []byte(b.String())
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(recordSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate report: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return nil, fmt.Errorf("report does not match schema: %s", strings.Join(errs, ", "))
	}
	return data, nil
}

// Export writes rec to path.
func Export(path string, rec Record) error {
	data, err := Marshal(rec)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
