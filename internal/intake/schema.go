// Package intake defines the ordered candidate fields collected before the
// technical questions, with their prompts and validators.
package intake

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrTemplateReference is returned when a prompt references a field that is
// not (yet) available. It signals a schema authoring bug, not a user error.
var ErrTemplateReference = errors.New("prompt references unavailable field")

var (
	errEmptyKey         = errors.New("field key cannot be empty")
	errDuplicateKey     = errors.New("duplicate field key")
	errMissingValidator = errors.New("field has no validator")
	errEmptySchema      = errors.New("schema has no fields")
)

// placeholderRe matches {{key}} placeholders in prompt templates.
var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Validator reports whether a trimmed answer is acceptable for a field.
type Validator func(input string) bool

// Field describes one intake question.
type Field struct {
	Key      string
	Label    string
	Prompt   string
	Validate Validator
}

// Schema is an immutable, ordered list of fields whose prompt templates have
// been checked to reference only earlier fields.
type Schema struct {
	fields []Field
	refs   [][]string
}

// NewSchema validates the fields and builds a Schema.
func NewSchema(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, errEmptySchema
	}

	seen := make(map[string]bool, len(fields))
	refs := make([][]string, len(fields))
	for i, f := range fields {
		if f.Key == "" {
			return nil, fmt.Errorf("field %d: %w", i, errEmptyKey)
		}
		if seen[f.Key] {
			return nil, fmt.Errorf("field %q: %w", f.Key, errDuplicateKey)
		}
		if f.Validate == nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, errMissingValidator)
		}
		for _, ref := range placeholders(f.Prompt) {
			if !seen[ref] {
				return nil, fmt.Errorf("field %q prompt uses {{%s}}: %w", f.Key, ref, ErrTemplateReference)
			}
			refs[i] = append(refs[i], ref)
		}
		seen[f.Key] = true
	}

	return &Schema{fields: append([]Field(nil), fields...), refs: refs}, nil
}

// MustSchema is like NewSchema but panics on error. Intended for static tables.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic("intake: " + err.Error())
	}
	return s
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Field returns the field at index i.
func (s *Schema) Field(i int) Field {
	return s.fields[i]
}

// Index returns the position of key in the schema, or -1.
func (s *Schema) Index(key string) int {
	for i, f := range s.fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

// Validate trims input and runs the validator of field i.
func (s *Schema) Validate(i int, input string) bool {
	return s.fields[i].Validate(strings.TrimSpace(input))
}

// Render substitutes the collected values into the prompt of field i.
func (s *Schema) Render(i int, collected map[string]string) (string, error) {
	f := s.fields[i]
	for _, ref := range s.refs[i] {
		if _, ok := collected[ref]; !ok {
			return "", fmt.Errorf("render %q: missing {{%s}}: %w", f.Key, ref, ErrTemplateReference)
		}
	}
	return placeholderRe.ReplaceAllStringFunc(f.Prompt, func(m string) string {
		return collected[placeholderRe.FindStringSubmatch(m)[1]]
	}), nil
}

func placeholders(prompt string) []string {
	var keys []string
	for _, m := range placeholderRe.FindAllStringSubmatch(prompt, -1) {
		keys = append(keys, m[1])
	}
	return keys
}
