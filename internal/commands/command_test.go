package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/sample", TypeSample},
		{":sample under 4", TypeSample},
		{"reorder split", TypeReorder},
		{"show done", TypeShow},
		{"priority L12", TypePriority},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseLineNumbersAreOneBased(t *testing.T) {
	cmd, err := Parse("sample under 4")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Sample.Under == nil || *cmd.Sample.Under != 3 {
		t.Fatalf("unexpected sample scope: %+v", cmd.Sample)
	}

	cmd, err = Parse("priority 1")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Priority.Position != 0 {
		t.Fatalf("unexpected position: %d", cmd.Priority.Position)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{"sample below 3", "sample under zero", "priority 0", "show later", "show", "reorder fast"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument error, got %v", in, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "/"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input error, got %v", in, err)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/reorder split")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Reorder: func(a ReorderArgs) (Result, error) {
			called = true
			if !a.MedianSplit {
				t.Fatal("expected median split")
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("show all")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}

func TestExecuteRejectsCommandWithoutArgs(t *testing.T) {
	_, err := Execute(Command{Type: TypeShow}, Handlers{
		Show: func(ShowArgs) (Result, error) { return Result{}, nil },
	})
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
		t.Fatalf("expected invalid argument error, got %v", err)
	}
}
