package pipeline

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitSegments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "two paragraphs",
			in:   "first paragraph\n\nsecond paragraph",
			want: []string{"first paragraph", "second paragraph"},
		},
		{
			name: "blank line with spaces",
			in:   "first\n   \nsecond",
			want: []string{"first", "second"},
		},
		{
			name: "multiline paragraph stays whole",
			in:   "line one\nline two\n\nline three",
			want: []string{"line one\nline two", "line three"},
		},
		{
			name: "trailing blank lines dropped",
			in:   "only paragraph\n\n\n",
			want: []string{"only paragraph"},
		},
		{
			name: "empty input",
			in:   "   \n\n  ",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSegments(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitSegments(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildTranslatePromptIncludesCount(t *testing.T) {
	prompt := buildTranslatePrompt("एक\n\nदो", 2)
	if !strings.Contains(prompt, "2 paragraphs") {
		t.Errorf("prompt missing paragraph count: %q", prompt)
	}
	if !strings.Contains(prompt, "एक") {
		t.Error("prompt missing transcript body")
	}
}

func TestMockTranslationMatchesSegmentCount(t *testing.T) {
	for _, n := range []int{1, 3, 5} {
		got := splitSegments(mockTranslation(n))
		if len(got) != n {
			t.Errorf("mockTranslation(%d) produced %d segments", n, len(got))
		}
	}
}
