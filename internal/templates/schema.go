package templates

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// createSchema constrains admin template payloads. Section ids come from KnownSections.
var createSchema = gojsonschema.NewStringLoader(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "defaultLatex"],
  "properties": {
    "name": {"type": "string", "minLength": 1, "maxLength": 120, "pattern": "\\S"},
    "defaultLatex": {"type": "string", "minLength": 1},
    "thumbnailUrl": {"type": "string"},
    "isPublic": {"type": "boolean"},
    "sections": {
      "type": "array",
      "uniqueItems": true,
      "items": {"enum": ["personal", "summary", "experience", "education", "skills", "projects", "certifications", "achievements", "positions"]}
    }
  }
}`)

// validateCreate checks the decoded payload against createSchema.
func validateCreate(in CreateInput) error {
	doc := map[string]any{
		"name":         in.Name,
		"defaultLatex": in.DefaultLatex,
		"thumbnailUrl": in.ThumbnailURL,
		"isPublic":     in.IsPublic,
	}
	if in.Sections != nil {
		sections := make([]any, len(in.Sections))
		for i, s := range in.Sections {
			sections[i] = s
		}
		doc["sections"] = sections
	}
	res, err := gojsonschema.Validate(createSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}
