package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidField = errors.New("extract: invalid inline field")

// FieldError reports an inline metadata value that does not parse.
type FieldError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: line %d: %s=%q", ErrInvalidField, e.Line+1, e.Field, e.Value)
}

func (e *FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidField}
	}
	return []error{ErrInvalidField, e.Err}
}

const (
	FieldPriority   = "priority"
	FieldDue        = "due"
	FieldCompletion = "completion"
)

var (
	inlineFieldPattern = regexp.MustCompile(`[\[(](priority|due|completion)::[ \t]*([^\])]*?)[ \t]*[\])]`)
	dueEmojiPattern    = regexp.MustCompile(`📅\x{FE0F}?[ \t]*(\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2})?)`)
	doneEmojiPattern   = regexp.MustCompile(`✅\x{FE0F}?[ \t]*(\d{4}-\d{2}-\d{2})`)
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
}

type metadata struct {
	priority *int
	due      *time.Time
	done     *time.Time
}

func parseMetadata(line int, raw string, loc *time.Location) (metadata, error) {
	var meta metadata
	for _, m := range inlineFieldPattern.FindAllStringSubmatch(raw, -1) {
		field, value := m[1], m[2]
		switch field {
		case FieldPriority:
			p, err := strconv.Atoi(value)
			if err != nil {
				return metadata{}, &FieldError{Line: line, Field: field, Value: value, Err: err}
			}
			meta.priority = &p
		case FieldDue:
			tm, err := parseDate(value, loc)
			if err != nil {
				return metadata{}, &FieldError{Line: line, Field: field, Value: value, Err: err}
			}
			meta.due = &tm
		case FieldCompletion:
			tm, err := parseDate(value, loc)
			if err != nil {
				return metadata{}, &FieldError{Line: line, Field: field, Value: value, Err: err}
			}
			meta.done = &tm
		}
	}
	if meta.due == nil {
		if m := dueEmojiPattern.FindStringSubmatch(raw); m != nil {
			tm, err := parseDate(m[1], loc)
			if err != nil {
				return metadata{}, &FieldError{Line: line, Field: FieldDue, Value: m[1], Err: err}
			}
			meta.due = &tm
		}
	}
	if meta.done == nil {
		if m := doneEmojiPattern.FindStringSubmatch(raw); m != nil {
			tm, err := parseDate(m[1], loc)
			if err != nil {
				return metadata{}, &FieldError{Line: line, Field: FieldCompletion, Value: m[1], Err: err}
			}
			meta.done = &tm
		}
	}
	return meta, nil
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if tm, err := time.Parse(time.RFC3339, value); err == nil {
		return tm, nil
	}
	var firstErr error
	for _, layout := range dateLayouts {
		tm, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return tm, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
