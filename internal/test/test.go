// Package test provides testing utilities for the ShaderLab compiler.
//
// String comparisons report a numbered diff of the lines that differ, which
// keeps failures on long GLSL sources readable.
package test

import (
	"fmt"
	"strings"
	"testing"
)

// AssertEqual checks if two values are equal and reports a test error if not.
func AssertEqual[T comparable](t *testing.T, actual, expected T) {
	t.Helper()
	if actual != expected {
		t.Errorf("\nexpected: %v\nactual:   %v", expected, actual)
	}
}

// AssertEqualWithDiff checks if two strings are equal and shows a diff if not.
func AssertEqualWithDiff(t *testing.T, actual, expected string) {
	t.Helper()
	if actual != expected {
		diff := Diff(expected, actual)
		t.Errorf("\n%s", diff)
	}
}

// AssertContains checks that text contains every fragment.
func AssertContains(t *testing.T, text string, fragments ...string) {
	t.Helper()
	for _, f := range fragments {
		if !strings.Contains(text, f) {
			t.Errorf("expected output to contain %q\noutput:\n%s", f, text)
		}
	}
}

// AssertNotContains checks that text contains none of the fragments.
func AssertNotContains(t *testing.T, text string, fragments ...string) {
	t.Helper()
	for _, f := range fragments {
		if strings.Contains(text, f) {
			t.Errorf("expected output not to contain %q\noutput:\n%s", f, text)
		}
	}
}

// Diff compares expected and actual line by line. Only differing lines and
// one line of context around them are shown, prefixed with their 1-based
// line number.
func Diff(expected, actual string) string {
	want := strings.Split(expected, "\n")
	got := strings.Split(actual, "\n")
	n := max(len(want), len(got))

	line := func(lines []string, i int) (string, bool) {
		if i < len(lines) {
			return lines[i], true
		}
		return "", false
	}
	differs := func(i int) bool {
		if i < 0 || i >= n {
			return false
		}
		w, wok := line(want, i)
		g, gok := line(got, i)
		return w != g || wok != gok
	}

	var b strings.Builder
	b.WriteString("--- expected\n+++ actual\n")
	for i := 0; i < n; i++ {
		if !differs(i-1) && !differs(i) && !differs(i+1) {
			continue
		}
		w, wok := line(want, i)
		g, gok := line(got, i)
		if !differs(i) {
			fmt.Fprintf(&b, "%4d  %s\n", i+1, w)
			continue
		}
		if wok {
			fmt.Fprintf(&b, "%4d -%s\n", i+1, w)
		}
		if gok {
			fmt.Fprintf(&b, "%4d +%s\n", i+1, g)
		}
	}
	return b.String()
}
