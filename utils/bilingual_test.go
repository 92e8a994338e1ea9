package utils

import (
	"testing"

	"github.com/amirphl/portfolio/app/dto"
	"github.com/stretchr/testify/assert"
)

func TestSplitBilingual(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want dto.LocalizedText
	}{
		{name: "both sides", raw: "Coucher de soleil | Sunset", want: dto.LocalizedText{FR: "Coucher de soleil", EN: "Sunset"}},
		{name: "no separator", raw: "  Seulement  ", want: dto.LocalizedText{FR: "Seulement", EN: ""}},
		{name: "empty input", raw: "", want: dto.LocalizedText{}},
		{name: "only separator", raw: "|", want: dto.LocalizedText{}},
		{name: "empty french side", raw: " | English", want: dto.LocalizedText{FR: "", EN: "English"}},
		{name: "first separator wins", raw: "a | b | c", want: dto.LocalizedText{FR: "a", EN: "b | c"}},
		{name: "no spaces", raw: "x|y", want: dto.LocalizedText{FR: "x", EN: "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitBilingual(tt.raw))
		})
	}
}

func TestSplitBilingual_Concatenation(t *testing.T) {
	pairs := [][2]string{
		{"Titre", "Title"},
		{"  espaces ", " spaces  "},
		{"", "only en"},
		{"only fr", ""},
		{"virgule, ici", "comma, here"},
	}
	for _, p := range pairs {
		got := SplitBilingual(p[0] + "|" + p[1])
		assert.Equal(t, dto.LocalizedText{FR: trimmed(p[0]), EN: trimmed(p[1])}, got)
	}
}

func TestSplitBilingualTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want dto.LocalizedTagSet
	}{
		{name: "both sides", raw: "a, b | c", want: dto.LocalizedTagSet{FR: []string{"a", "b"}, EN: []string{"c"}}},
		{name: "empty tokens dropped", raw: "a,,b|", want: dto.LocalizedTagSet{FR: []string{"a", "b"}, EN: []string{}}},
		{name: "empty input", raw: "", want: dto.LocalizedTagSet{FR: []string{}, EN: []string{}}},
		{name: "no separator", raw: "chat, chien", want: dto.LocalizedTagSet{FR: []string{"chat", "chien"}, EN: []string{}}},
		{name: "whitespace tokens", raw: " , nuit ,  | night, ,", want: dto.LocalizedTagSet{FR: []string{"nuit"}, EN: []string{"night"}}},
		{name: "order preserved", raw: "z, a, m | 3, 1, 2", want: dto.LocalizedTagSet{FR: []string{"z", "a", "m"}, EN: []string{"3", "1", "2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitBilingualTags(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.NotNil(t, got.FR)
			assert.NotNil(t, got.EN)
		})
	}
}

func TestJoinBilingualRoundTrip(t *testing.T) {
	text := dto.LocalizedText{FR: "Titre", EN: "Title"}
	assert.Equal(t, "Titre | Title", JoinBilingual(text))
	assert.Equal(t, text, SplitBilingual(JoinBilingual(text)))

	tags := dto.LocalizedTagSet{FR: []string{"chat", "nuit"}, EN: []string{"cat"}}
	assert.Equal(t, tags, SplitBilingualTags(JoinBilingualTags(tags)))
}

func TestNormalizeMIME(t *testing.T) {
	assert.Equal(t, "image/jpeg", NormalizeMIME("image/jpeg"))
	assert.Equal(t, "image/png", NormalizeMIME(" Image/PNG ; charset=binary"))
	assert.Equal(t, "", NormalizeMIME(""))
}

func trimmed(s string) string {
	return SplitBilingual(s).FR
}
