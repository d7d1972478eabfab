package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const lessonSchemaURL = "schema://mathdrill/draft-lesson.json"

var compiledLesson = sync.OnceValues(func() (*jsonschema.Schema, error) {
	// The compiler wants a decoded JSON value, so round-trip the Go map.
	raw, err := json.Marshal(lessonSchema())
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(lessonSchemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(lessonSchemaURL)
})

// reply is what a vendor call hands back before validation.
type reply struct {
	body      json.RawMessage
	usage     Usage
	model     string
	truncated bool
}

// decode validates r against the lesson schema and builds the Draft.
func (r reply) decode() (*Draft, error) {
	if r.truncated {
		return nil, &Error{Kind: Truncated, Reply: r.body}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(r.body))
	if err != nil {
		return nil, &Error{Kind: BadReply, Reply: r.body, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	schema, err := compiledLesson()
	if err != nil {
		return nil, fmt.Errorf("compile lesson schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, &Error{Kind: BadReply, Reply: r.body, Err: err}
	}

	var out struct {
		Name  string      `json:"name"`
		Tasks []DraftTask `json:"tasks"`
	}
	if err := json.Unmarshal(r.body, &out); err != nil {
		return nil, &Error{Kind: BadReply, Reply: r.body, Err: err}
	}
	return &Draft{
		Name:  out.Name,
		Tasks: out.Tasks,
		Usage: r.usage,
		Model: r.model,
		Reply: r.body,
	}, nil
}
