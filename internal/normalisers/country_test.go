package normalisers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCountryTables(t *testing.T) {
	// Every abbreviation must expand to a canonical table entry. This is
	// the startup assertion that replaces runtime patching.
	assert.NoError(t, validateCountryTables())
}

func TestFullChineseCountry(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical name", "衣索比亞", "衣索比亞"},
		{"abbreviation", "衣索", "衣索比亞"},
		{"abbreviation png", "巴紐", "巴布亞新幾內亞"},
		{"english", "Ethiopia", "衣索比亞"},
		{"english upper", "ETHIOPIA", "衣索比亞"},
		{"empty", "", UnknownCountryZh},
		{"unresolvable", "火星", UnknownCountryZh},
		{"whitespace", "  肯亞 ", "肯亞"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FullChineseCountry(tt.input))
		})
	}
}

func TestEnglishCountry(t *testing.T) {
	assert.Equal(t, "Ethiopia", EnglishCountry("衣索比亞"))
	assert.Equal(t, "Ethiopia", EnglishCountry("衣索"))
	assert.Equal(t, "Papua New Guinea", EnglishCountry("巴紐"))
	assert.Equal(t, UnknownCountryEn, EnglishCountry("火星"))
	assert.Equal(t, UnknownCountryEn, EnglishCountry(""))
}
