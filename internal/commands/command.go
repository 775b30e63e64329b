package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeSample   Type = "sample"
	TypeReorder  Type = "reorder"
	TypeShow     Type = "show"
	TypePriority Type = "priority"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// SampleArgs restricts the draw to the subtree under a task when Under is set.
type SampleArgs struct {
	Under *int
}

type ReorderArgs struct {
	MedianSplit bool
}

type ShowArgs struct {
	Bucket string
}

type PriorityArgs struct {
	Position int
}

type Command struct {
	Type     Type
	Raw      string
	Sample   *SampleArgs
	Reorder  *ReorderArgs
	Show     *ShowArgs
	Priority *PriorityArgs
}

// Buckets accepted by show. Kept in sync with the reorder bucket names.
var showBuckets = []string{"anomalous", "unprioritized", "prioritized", "done", "all"}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, ":") {
		raw = strings.TrimSpace(raw[1:])
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeSample:
		return parseSample(input, args)
	case TypeReorder:
		return parseReorder(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypePriority:
		return parsePriority(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseSample(raw string, args []string) (Command, error) {
	out := Command{Type: TypeSample, Raw: raw, Sample: &SampleArgs{}}
	if len(args) == 0 {
		return out, nil
	}
	if len(args) != 2 || strings.ToLower(args[0]) != "under" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "usage: sample [under LINE]"}
	}
	pos, err := parseLine(args[1])
	if err != nil {
		return Command{}, err
	}
	out.Sample.Under = &pos
	return out, nil
}

func parseReorder(raw string, args []string) (Command, error) {
	out := Command{Type: TypeReorder, Raw: raw, Reorder: &ReorderArgs{}}
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "split", "median":
			out.Reorder.MedianSplit = true
		default:
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown reorder option: %s", arg)}
		}
	}
	return out, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a bucket"}
	}
	bucket := strings.ToLower(args[0])
	for _, b := range showBuckets {
		if b == bucket {
			return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Bucket: bucket}}, nil
		}
	}
	return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown bucket: %s", bucket)}
}

func parsePriority(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "priority requires a line number"}
	}
	pos, err := parseLine(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypePriority, Raw: raw, Priority: &PriorityArgs{Position: pos}}, nil
}

// parseLine reads a one-based line number and returns the zero-based task
// position.
func parseLine(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(arg, "L"))
	if err != nil || n < 1 {
		return 0, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid line number: %s", arg)}
	}
	return n - 1, nil
}
