package task

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// ValidationError reports a request body that cannot be applied to a task.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// ParseCreate validates a create request body. The title is trimmed and the
// palette default is applied when the color is absent or null.
func ParseCreate(body []byte, palette Palette) (CreateTask, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return CreateTask{}, err
	}

	title, ok := decodeString(fields["title"])
	title = trimTitle(title)
	if !ok || title == "" {
		return CreateTask{}, invalid("Title is required and must not be empty")
	}

	color := palette.Default()
	if raw, present := fields["color"]; present && !isNull(raw) {
		c, ok := decodeString(raw)
		if !ok || !palette.Contains(c) {
			return CreateTask{}, invalid("invalid color. valid colors are: " + palette.String())
		}
		color = c
	}

	return CreateTask{Title: title, Color: color}, nil
}

// ParseUpdate validates a partial update body. Absent fields are not checked
// and unknown fields are dropped.
func ParseUpdate(body []byte, palette Palette) (UpdateTask, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return UpdateTask{}, err
	}

	var upd UpdateTask

	if raw, present := fields["title"]; present {
		title, ok := decodeString(raw)
		title = trimTitle(title)
		if !ok || title == "" {
			return UpdateTask{}, invalid("Title must not be empty")
		}
		upd.Title = &title
	}

	if raw, present := fields["color"]; present {
		color, ok := decodeString(raw)
		if !ok || !palette.Contains(color) {
			return UpdateTask{}, invalid("Invalid color. Valid colors are: " + palette.String())
		}
		upd.Color = &color
	}

	if raw, present := fields["completed"]; present {
		var completed bool
		if isNull(raw) || json.Unmarshal(raw, &completed) != nil {
			return UpdateTask{}, invalid("Completed must be a boolean")
		}
		upd.Completed = &completed
	}

	return upd, nil
}

// trimTitle strips whitespace and byte order marks from both ends.
func trimTitle(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// decodeObject treats an empty body as {}.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	if body[0] != '{' {
		return nil, invalid("Invalid request body")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, invalid("Invalid request body")
	}
	return fields, nil
}

// decodeString reports false for a missing, null or non-string value.
func decodeString(raw json.RawMessage) (string, bool) {
	if raw == nil || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
