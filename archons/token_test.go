package archons

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []token
	}{
		{
			name: "long with inline value",
			args: []string{"--config=a=b", "--verbose"},
			want: []token{
				{kind: tokenLong, raw: "--config=a=b", name: "config", inline: "a=b", hasInline: true},
				{kind: tokenLong, raw: "--verbose", name: "verbose"},
			},
		},
		{
			name: "short cluster and negative number",
			args: []string{"-vvx", "-5", "-1.5"},
			want: []token{
				{kind: tokenShort, raw: "-vvx", name: "vvx"},
				{kind: tokenShort, raw: "-5", name: "5", negative: true},
				{kind: tokenShort, raw: "-1.5", name: "1.5", negative: true},
			},
		},
		{
			name: "double dash makes everything literal",
			args: []string{"a", "--", "--flag", "-x", "--"},
			want: []token{
				{kind: tokenValue, raw: "a"},
				{kind: tokenDoubleDash, raw: "--"},
				{kind: tokenValue, raw: "--flag", literal: true},
				{kind: tokenValue, raw: "-x", literal: true},
				{kind: tokenValue, raw: "--", literal: true},
			},
		},
		{
			name: "lone dash is a value",
			args: []string{"-"},
			want: []token{{kind: tokenValue, raw: "-"}},
		},
		{
			name: "empty",
			args: nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.args, nil)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(token{})); diff != "" {
				t.Errorf("tokenize(%q) mismatch (-want +got):\n%s", tt.args, diff)
			}
		})
	}
}

func TestTokenizeReusesBuffer(t *testing.T) {
	buf := tokenPool.Get()
	defer tokenPool.Put(buf)

	*buf = tokenize([]string{"a", "b"}, *buf)
	if len(*buf) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(*buf))
	}
	*buf = tokenize([]string{"c"}, (*buf)[:0])
	if len(*buf) != 1 || (*buf)[0].raw != "c" {
		t.Fatalf("unexpected tokens %+v", *buf)
	}
}
