package diag

import (
	"bytes"
	"testing"

	"github.com/hassandahiru/mj-frontend/internal/strtab"
)

func TestOrdinal(t *testing.T) {
	cases := map[int]string{
		0: "0th", 1: "1st", 2: "2nd", 3: "3rd", 4: "4th",
		11: "11th", 12: "12th", 13: "13th",
		21: "21st", 22: "22nd", 23: "23rd", 101: "101st",
	}
	for n, want := range cases {
		if got := ordinal(n); got != want {
			t.Errorf("ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestReport_FixedFormat(t *testing.T) {
	names := strtab.New()
	id := names.Intern("foo")

	var buf bytes.Buffer
	r := New(names)
	r.Out = &buf
	r.Exit = func(int) { t.Fatal("Continue severity must not exit") }

	r.Report(12, Undeclared, Continue, id, -1)

	want := "Semantic Error--line: 12, foo is not declared.\n"
	if buf.String() != want {
		t.Errorf("Report output = %q, want %q", buf.String(), want)
	}
	if r.Errors != 1 {
		t.Errorf("Errors = %d, want 1", r.Errors)
	}
}

func TestReport_AbortCallsExit(t *testing.T) {
	names := strtab.New()
	var buf bytes.Buffer
	r := New(names)
	r.Out = &buf

	exited := false
	r.Exit = func(code int) {
		exited = true
		if code != 1 {
			t.Errorf("exit code = %d, want 1", code)
		}
	}

	r.Report(1, STOverflow, Abort, -1, -1)

	if !exited {
		t.Fatal("Abort severity should call Exit")
	}
}

func TestReport_NoNameOmitsPlaceholder(t *testing.T) {
	names := strtab.New()
	var buf bytes.Buffer
	r := New(names)
	r.Out = &buf
	r.Exit = func(int) {}

	r.Report(3, StackOverflow, Abort, -1, -1)

	want := "Semantic Error--line: 3, scope stack overflow.\n"
	if buf.String() != want {
		t.Errorf("Report output = %q, want %q", buf.String(), want)
	}
}
