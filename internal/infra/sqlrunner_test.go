package infra

import "testing"

func TestExtractMarker(t *testing.T) {
	query := "--sql 1f0c6a2e-5d7b-4c1e-9a3f-2b8e4d6c0a11\nselect 1;\n"
	marker, body, err := extractMarker(query)
	if err != nil {
		t.Fatalf("extractMarker returned error: %v", err)
	}
	if marker != "1f0c6a2e-5d7b-4c1e-9a3f-2b8e4d6c0a11" {
		t.Fatalf("marker = %q", marker)
	}
	if body != "select 1;" {
		t.Fatalf("body = %q", body)
	}
	if _, _, err := extractMarker("select 1;"); err == nil {
		t.Fatalf("expected error for unmarked query")
	}
}
