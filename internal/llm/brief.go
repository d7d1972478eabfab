package llm

import (
	"fmt"
	"strings"
)

// MaxTasks caps how many tasks a single drafted lesson may hold.
const MaxTasks = 100

// lessonTool names the structured reply for vendors that need a name for it.
const lessonTool = "submit_lesson"

const lessonToolDescription = "Submit the drafted drill lesson: a short title and its question/answer pairs."

const systemPrompt = `You write short mental-math drill lessons for a terminal quiz app. Each task is a question and a single answer. Answers are checked by exact text match, so every answer must be the one canonical form a student would type: plain digits, no units, no spaces, no trailing zeros, fractions as a/b in lowest terms.`

// brief renders the user message for req.
func brief(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Number of tasks: %d\n", req.Count)
	if req.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", req.Notes)
	}
	b.WriteString("\nEvery question must be distinct. Keep questions under 30 characters.")

	return b.String()
}

// transcript is the prompt as recorded with each generation.
func transcript(req Request) string {
	return "[system]\n" + systemPrompt + "\n\n[user]\n" + brief(req)
}

// taskSchema describes one question/answer pair.
var taskSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question": map[string]any{
			"type":        "string",
			"description": "The problem as the student sees it, e.g. \"7 x 8\"",
		},
		"answer": map[string]any{
			"type":        "string",
			"description": "The exact expected answer text, e.g. \"56\"",
		},
	},
	"required":             []any{"question", "answer"},
	"additionalProperties": false,
}

// lessonProperties are the top-level fields of a drafted lesson.
var lessonProperties = map[string]any{
	"name": map[string]any{
		"type":        "string",
		"description": "Short lesson title (1-4 words), e.g. \"Times tables 7\"",
		"minLength":   1,
	},
	"tasks": map[string]any{
		"type":     "array",
		"minItems": 1,
		"maxItems": MaxTasks,
		"items":    taskSchema,
	},
}

var lessonRequired = []string{"name", "tasks"}

// lessonSchema is the full JSON Schema a reply must satisfy.
func lessonSchema() map[string]any {
	required := make([]any, len(lessonRequired))
	for i, r := range lessonRequired {
		required[i] = r
	}
	return map[string]any{
		"type":                 "object",
		"properties":           lessonProperties,
		"required":             required,
		"additionalProperties": false,
	}
}
