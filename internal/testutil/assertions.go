package testutil

import (
	"errors"
	"testing"

	"github.com/bawdo/relq/nodes"
)

// AssertEqual checks that got == want and reports a descriptive error if not.
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("expected:\n  %v\ngot:\n  %v", want, got)
	}
}

// AssertSame checks that a rewrite returned the exact node it was given.
func AssertSame(t *testing.T, got, want nodes.Expression) {
	t.Helper()
	if got != want {
		t.Errorf("expected the original node %p to be returned, got %p (%T)", want, got, got)
	}
}

// AssertNotSame checks that a rewrite produced a new node.
func AssertNotSame(t *testing.T, got, original nodes.Expression) {
	t.Helper()
	if got == original {
		t.Errorf("expected a rebuilt node, got the original %p", original)
	}
}

// AssertSQL accepts a visitor and node, renders the SQL, and compares it with the expected string.
func AssertSQL(t *testing.T, v nodes.Visitor, node nodes.Expression, expected string) {
	t.Helper()
	got := node.Accept(v)
	if got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

// AssertNoError fails the test if err is non-nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error but got nil")
	}
}

// AssertErrorIs fails the test unless errors.Is(err, target).
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error matching %v, got %v", target, err)
	}
}
