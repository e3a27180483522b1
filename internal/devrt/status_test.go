package devrt

import (
	"errors"
	"strings"
	"testing"
)

func TestStatusStrings(t *testing.T) {
	cases := map[Status]string{
		StatusSuccess:          "success",
		StatusMemoryAllocation: "out of memory",
		StatusLaunchFailure:    "launch failure",
		Status(42):             "status 42",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", int(st), got, want)
		}
	}
}

func TestStatusAsError(t *testing.T) {
	var err error = StatusMemoryAllocation
	if !strings.Contains(err.Error(), "out of memory") || !strings.Contains(err.Error(), "(2)") {
		t.Fatalf("unexpected error text: %q", err.Error())
	}
	var st Status
	if !errors.As(err, &st) || st != StatusMemoryAllocation {
		t.Fatalf("errors.As failed: %v", st)
	}
}

func TestStatusLabel(t *testing.T) {
	if got := StatusInvalidValue.Label(); got != "1" {
		t.Fatalf("label=%q", got)
	}
	if got := Status(12345).Label(); got != "other" {
		t.Fatalf("label=%q", got)
	}
}
