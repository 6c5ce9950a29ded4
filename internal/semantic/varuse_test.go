package semantic

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hassandahiru/mj-frontend/internal/diag"
)

// Boundary cases from the array-access rule: a 2-dimensional array accessed
// with too many indices, too few, a trailing .length followed by further
// access, and a bare .length - the one case a partial index count must not
// reject.
const twoDimArraySrc = `
	program P;
	class A {
		int arr[2][3];
		method void m() {
			println(%s);
		}
	}
`

func TestVarUse_ArrayAccessWithTooManyIndicesReportsIndexMismatch(t *testing.T) {
	_, _, rep := analyze(t, fmt.Sprintf(twoDimArraySrc, "arr[0][1][2]"))

	if diff := cmp.Diff([]diag.Code{diag.IndexMismatch}, codes(rep)); diff != "" {
		t.Fatalf("unexpected diagnostics (-want +got):\n%s", diff)
	}
}

func TestVarUse_ArrayAccessWithTooFewIndicesReportsIndexMismatch(t *testing.T) {
	_, _, rep := analyze(t, fmt.Sprintf(twoDimArraySrc, "arr[0]"))

	if diff := cmp.Diff([]diag.Code{diag.IndexMismatch}, codes(rep)); diff != "" {
		t.Fatalf("unexpected diagnostics (-want +got):\n%s", diff)
	}
}

func TestVarUse_ArrayLengthFollowedByFurtherAccessReportsTypeMismatch(t *testing.T) {
	_, _, rep := analyze(t, fmt.Sprintf(twoDimArraySrc, "arr.length.x"))

	if diff := cmp.Diff([]diag.Code{diag.TypeMismatch}, codes(rep)); diff != "" {
		t.Fatalf("unexpected diagnostics (-want +got):\n%s", diff)
	}
}

func TestVarUse_BareArrayLengthIsAccepted(t *testing.T) {
	_, _, rep := analyze(t, fmt.Sprintf(twoDimArraySrc, "arr.length"))

	if diff := cmp.Diff([]diag.Code{}, codes(rep)); diff != "" {
		t.Fatalf("unexpected diagnostics (-want +got):\n%s", diff)
	}
}

// TestVarUse_PartialIndexThenLengthIsAccepted covers the fix this test file
// exists to pin down: a 2-D array accessed with fewer indices than its
// declared dimension is only an error when nothing follows - .length
// trailing a partial index chain (e.g. on an array-of-arrays element) must
// not be rejected just because the index count is short of the full
// dimension.
func TestVarUse_PartialIndexThenLengthIsAccepted(t *testing.T) {
	_, _, rep := analyze(t, fmt.Sprintf(twoDimArraySrc, "arr[0].length"))

	if diff := cmp.Diff([]diag.Code{}, codes(rep)); diff != "" {
		t.Fatalf("unexpected diagnostics (-want +got):\n%s", diff)
	}
}

func TestVarUse_BareClassTypedVariableIsAccepted(t *testing.T) {
	_, _, rep := analyze(t, `
		program P;
		class A { }
		class B {
			A obj;
			method void use() {
				println(obj);
			}
		}
	`)

	if diff := cmp.Diff([]diag.Code{}, codes(rep)); diff != "" {
		t.Fatalf("unexpected diagnostics (-want +got):\n%s", diff)
	}
}
