package lesson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ParseError reports a lesson file that could not be read.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid lesson file: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse validates data against the lesson file schema and decodes it.
func Parse(data []byte) ([]Lesson, error) {
	if err := ValidateFile(data); err != nil {
		return nil, err
	}

	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &ParseError{Err: err}
	}
	for i := range c.Lessons {
		if c.Lessons[i].Tasks == nil {
			c.Lessons[i].Tasks = map[string]string{}
		}
	}
	return c.Lessons, nil
}

// ValidateFile checks that data is a well-formed lesson file.
func ValidateFile(data []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &ParseError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	sch, err := schema()
	if err != nil {
		return fmt.Errorf("compile lesson schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}

// Marshal encodes lessons as an indented lesson file.
func Marshal(lessons []Lesson) ([]byte, error) {
	if lessons == nil {
		lessons = []Lesson{}
	}
	data, err := json.MarshalIndent(Collection{Lessons: lessons}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal lessons: %w", err)
	}
	return append(data, '\n'), nil
}
