package rnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidates(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "plain rnc",
			raw:  "101010632",
			want: []string{"101010632", "101010632", "101010632"},
		},
		{
			name: "cedula gets repunctuated",
			raw:  "00110344256",
			want: []string{"00110344256", "00110344256", "00110344256", "001-1034425-6"},
		},
		{
			name: "hyphenated cedula",
			raw:  "001-1034425-6",
			want: []string{"001-1034425-6", "00110344256", "001-1034425-6"},
		},
		{
			name: "embedded spaces",
			raw:  "1 01 01063 2",
			want: []string{"1 01 01063 2", "1 01 01063 2", "101010632"},
		},
		{
			name: "eleven chars with spaces still repunctuated",
			raw:  "001 1034425",
			want: []string{"001 1034425", "001 1034425", "0011034425", "001- 103442-5"},
		},
		{
			name: "ten chars with a multi-byte rune are not split",
			raw:  "001103442ñ",
			want: []string{"001103442ñ", "001103442ñ", "001103442ñ"},
		},
		{
			name: "length counts characters, not bytes",
			raw:  "001103442ñ6",
			want: []string{"001103442ñ6", "001103442ñ6", "001103442ñ6", "001-103442ñ-6"},
		},
		{
			name: "empty",
			raw:  "",
			want: []string{"", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Candidates(tt.raw))
		})
	}
}

func TestCandidates_FirstIsRaw(t *testing.T) {
	for _, raw := range []string{"", "x", "00110344256", "001-1034425-6", " 131 "} {
		got := Candidates(raw)
		assert.NotEmpty(t, got)
		assert.Equal(t, raw, got[0])
	}
}

func TestCandidates_Idempotent(t *testing.T) {
	for _, raw := range []string{"00110344256", "001-1034425-6", "1 3 1", "abc", ""} {
		first := Candidates(raw)[0]
		assert.Equal(t, Candidates(raw)[0], Candidates(first)[0], raw)
	}
}
