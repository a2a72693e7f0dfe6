package tui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitPaths(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  a.txt   b.txt ", []string{"a.txt", "b.txt"}},
		{`"my notes.txt" b.txt`, []string{"my notes.txt", "b.txt"}},
		{`'it"s.txt'`, []string{`it"s.txt`}},
		{`my\ notes.txt`, []string{"my notes.txt"}},
		{`"say \"hi\".txt"`, []string{`say "hi".txt`}},
		{`C:\docs\a.txt`, []string{`C:\docs\a.txt`}},
		{`/tmp/"odd dir"/x`, []string{"/tmp/odd dir/x"}},
		{`"" a.txt`, []string{"a.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := splitPaths(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := splitPaths(`"open.txt`)
	require.ErrorIs(t, err, errUnclosedQuote)
}
