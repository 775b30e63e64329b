package storage

import "time"

type Operation string

const (
	OperationSample  Operation = "sample"
	OperationReorder Operation = "reorder"
)

func (o Operation) IsValid() bool {
	switch o {
	case OperationSample, OperationReorder:
		return true
	default:
		return false
	}
}

// Run is one journaled invocation against a document. Position is nil when a
// sample found no eligible task. Task text is the picked line, never the
// document body.
type Run struct {
	ID        string
	Document  string
	Operation Operation
	Position  *int
	TaskText  string
	TaskCount int
	CreatedAt time.Time
}

type RunFilter struct {
	Document  string
	Operation Operation
	Limit     int
	Offset    int
}
