package main

import (
	"strings"
	"testing"
)

func TestLintFile(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantMsgs []string
	}{
		{
			name: "marked query passes",
			src: "package q\nconst QOne = `--sql 11111111-2222-3333-4444-555555555555\nselect 1;`\n",
		},
		{
			name:     "missing marker",
			src:      "package q\nconst QOne = `select * from viaqris_documents`\n",
			wantMsgs: []string{"missing or invalid"},
		},
		{
			name:     "uppercase uuid rejected",
			src:      "package q\nconst QOne = `--sql 11111111-2222-3333-4444-55555555555A\nselect 1;`\n",
			wantMsgs: []string{"missing or invalid"},
		},
		{
			name: "duplicate marker",
			src: "package q\nconst (\n" +
				"QOne = `--sql 11111111-2222-3333-4444-555555555555\nselect 1;`\n" +
				"QTwo = `--sql 11111111-2222-3333-4444-555555555555\nupdate t set a = 1;`\n)\n",
			wantMsgs: []string{"marker already used"},
		},
		{
			name: "non sql strings ignored",
			src:  "package q\nconst Greeting = \"halo\"\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := newLinter()
			if err := l.lintFile("q.go", tc.src); err != nil {
				t.Fatalf("lintFile: %v", err)
			}
			if len(l.violations) != len(tc.wantMsgs) {
				t.Fatalf("violations = %+v, want %d", l.violations, len(tc.wantMsgs))
			}
			for i, want := range tc.wantMsgs {
				if !strings.Contains(l.violations[i].message, want) {
					t.Fatalf("violation %d = %q, want %q", i, l.violations[i].message, want)
				}
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("\n  --sql abc  \nselect 1"); got != "--sql abc" {
		t.Fatalf("firstLine() = %q", got)
	}
}
