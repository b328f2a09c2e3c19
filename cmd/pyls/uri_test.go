package main

import "testing"

func TestPathToURIRooted(t *testing.T) {
	if got := pathToURI("/w/a.py"); got != "file:///w/a.py" {
		t.Fatalf("pathToURI = %q", got)
	}
}

func TestPathToURIUnrooted(t *testing.T) {
	if got := pathToURI(`sub\a.py`); got != "file:///LOCAL-PATH/sub/a.py" {
		t.Fatalf("pathToURI = %q", got)
	}
}

func TestURIToPathRoundTrip(t *testing.T) {
	for _, path := range []string{"/w/a.py", "/w/pkg/__init__.py"} {
		if got := uriToPath(pathToURI(path)); got != path {
			t.Fatalf("uriToPath(pathToURI(%q)) = %q", path, got)
		}
	}
}

func TestURIToPathLocalPathPrefix(t *testing.T) {
	if got := uriToPath("file:///LOCAL-PATH/sub/a.py"); got != "sub/a.py" {
		t.Fatalf("uriToPath = %q", got)
	}
}

func TestIdentifierAtCursor(t *testing.T) {
	text := "value = compute(arg)\n"
	cases := []struct {
		col  int
		want string
	}{
		{0, "value"},
		{3, "value"},
		{8, "compute"},
		{16, "arg"},
		{6, ""}, // on the '=' between tokens
	}
	for _, c := range cases {
		if got := identifierAt(text, Position{Line: 0, Character: c.col}); got != c.want {
			t.Errorf("identifierAt(col %d) = %q, want %q", c.col, got, c.want)
		}
	}
}
