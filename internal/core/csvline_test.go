package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "plain fields",
			input: "t,x,y,z",
			want:  []string{"t", "x", "y", "z"},
		},
		{
			name:  "fields are trimmed",
			input: " 0 ,  1.5,2 ",
			want:  []string{"0", "1.5", "2"},
		},
		{
			name:  "comma inside quotes",
			input: `1,"a,b",2`,
			want:  []string{"1", "a,b", "2"},
		},
		{
			name:  "doubled quote is literal",
			input: `"say ""hi""",x`,
			want:  []string{`say "hi"`, "x"},
		},
		{
			name:  "unterminated quote absorbs rest of line",
			input: `1,"open,2,3`,
			want:  []string{"1", "open,2,3"},
		},
		{
			name:  "empty fields",
			input: ",,",
			want:  []string{"", "", ""},
		},
		{
			name:  "empty line is one empty field",
			input: "",
			want:  []string{""},
		},
		{
			name:  "trailing comma",
			input: "a,b,",
			want:  []string{"a", "b", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseLine(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}
