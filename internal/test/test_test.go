package test

import "testing"

func TestDiffShowsChangedLinesWithContext(t *testing.T) {
	expected := "a\nb\nc\nd\ne"
	actual := "a\nb\nX\nd\ne\nf"

	got := Diff(expected, actual)
	want := "--- expected\n+++ actual\n" +
		"   2  b\n" +
		"   3 -c\n" +
		"   3 +X\n" +
		"   4  d\n" +
		"   5  e\n" +
		"   6 +f\n"
	if got != want {
		t.Errorf("unexpected diff:\n%s", got)
	}
}

func TestDiffEqual(t *testing.T) {
	if got := Diff("same\ntext", "same\ntext"); got != "--- expected\n+++ actual\n" {
		t.Errorf("expected an empty diff, got:\n%s", got)
	}
}
