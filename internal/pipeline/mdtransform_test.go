package pipeline

import (
	"context"
	"testing"
)

func TestDedent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"common spaces", "    # T\n\n    body\n      nested", "# T\n\nbody\n  nested"},
		{"blank lines ignored", "\n    a\n  \n    b\n", "\na\n\nb\n"},
		{"mixed indent keeps shared part", "\t a\n\tb", " a\nb"},
		{"no indent", "a\n  b", "a\n  b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Dedent(tt.input); got != tt.want {
				t.Errorf("Dedent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNotebookTextPreprocessor(t *testing.T) {
	t.Parallel()

	p := &NotebookTextPreprocessor{}
	input := "\r\n    Some ==bright== text\r\n\r\n\r\n\r\n    more\r\n    "
	want := "Some " + MarkStartPlaceholder + "bright" + MarkEndPlaceholder + " text\n\nmore"

	if got := p.PreprocessMarkdown(context.Background(), input); got != want {
		t.Errorf("PreprocessMarkdown() = %q, want %q", got, want)
	}

	if got := ConvertMarkPlaceholders(MarkStartPlaceholder + "x" + MarkEndPlaceholder); got != "<mark>x</mark>" {
		t.Errorf("ConvertMarkPlaceholders() = %q", got)
	}
}
