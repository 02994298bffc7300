package pipeline

import (
	"context"
	"strings"
	"testing"
)

func TestGoldmarkConverter_ToFragment(t *testing.T) {
	t.Parallel()

	conv := NewGoldmarkConverter()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "paragraph with link",
			input:    "See [niivue](https://niivue.com) docs.",
			contains: []string{`<p>See <a href="https://niivue.com">niivue</a> docs.</p>`},
			excludes: []string{"<html", "<body"},
		},
		{
			name:     "gfm table",
			input:    "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "highlighted code uses classes",
			input:    "```python\nimport marimo as mo\n```",
			contains: []string{`class="chroma"`},
		},
		{
			name:     "raw html dropped",
			input:    "<script>alert(1)</script>\n\ntext",
			contains: []string{"<p>text</p>"},
			excludes: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToFragment(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToFragment() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("ToFragment() missing %q in %q", want, got)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("ToFragment() contains %q in %q", bad, got)
				}
			}
		})
	}

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := conv.ToFragment(ctx, "x"); err == nil {
			t.Error("expected context error")
		}
	})
}
