// Package utils provides utility functions for the application.
package utils

import (
	"strings"

	"github.com/amirphl/portfolio/app/dto"
)

// BilingualSeparator separates the French side from the English side.
const BilingualSeparator = "|"

// SplitBilingual turns "fr | en" into a LocalizedText. Only the first
// separator splits; anything after it, further separators included, belongs
// to the English side. Input without a separator yields an empty English side.
func SplitBilingual(raw string) dto.LocalizedText {
	fr, en, _ := strings.Cut(raw, BilingualSeparator)
	return dto.LocalizedText{
		FR: strings.TrimSpace(fr),
		EN: strings.TrimSpace(en),
	}
}

// SplitBilingualTags turns "a, b | c, d" into per-language tag lists.
// Empty tokens are dropped; the returned slices are never nil.
func SplitBilingualTags(raw string) dto.LocalizedTagSet {
	text := SplitBilingual(raw)
	return dto.LocalizedTagSet{
		FR: splitTagList(text.FR),
		EN: splitTagList(text.EN),
	}
}

// JoinBilingual is the inverse of SplitBilingual for values without separators.
func JoinBilingual(text dto.LocalizedText) string {
	return text.FR + " " + BilingualSeparator + " " + text.EN
}

// JoinBilingualTags is the inverse of SplitBilingualTags.
func JoinBilingualTags(tags dto.LocalizedTagSet) string {
	return JoinBilingual(dto.LocalizedText{
		FR: strings.Join(tags.FR, ", "),
		EN: strings.Join(tags.EN, ", "),
	})
}

func splitTagList(s string) []string {
	out := make([]string, 0)
	for _, token := range strings.Split(s, ",") {
		if t := strings.TrimSpace(token); t != "" {
			out = append(out, t)
		}
	}
	return out
}
