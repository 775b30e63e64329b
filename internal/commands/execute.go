package commands

import "fmt"

type Result struct {
	Message string
	// Cursor is the task position to move to, if any.
	Cursor *int
}

type Handlers struct {
	Sample   func(SampleArgs) (Result, error)
	Reorder  func(ReorderArgs) (Result, error)
	Show     func(ShowArgs) (Result, error)
	Priority func(PriorityArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeSample:
		return dispatch(cmd.Type, handlers.Sample, cmd.Sample)
	case TypeReorder:
		return dispatch(cmd.Type, handlers.Reorder, cmd.Reorder)
	case TypeShow:
		return dispatch(cmd.Type, handlers.Show, cmd.Show)
	case TypePriority:
		return dispatch(cmd.Type, handlers.Priority, cmd.Priority)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func dispatch[A any](t Type, handler func(A) (Result, error), args *A) (Result, error) {
	if handler == nil {
		return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
	}
	if args == nil {
		return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s command has no arguments", t)}
	}
	return handler(*args)
}
