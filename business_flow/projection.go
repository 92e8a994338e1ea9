package businessflow

import "github.com/amirphl/portfolio/app/dto"

// Context keys stored alongside an asset.
const (
	ContextCaptionFR = "caption_fr"
	ContextCaptionEN = "caption_en"
	ContextAltFR     = "alt_fr"
	ContextAltEN     = "alt_en"
	ContextCustomFR  = "custom_fr"
	ContextCustomEN  = "custom_en"
)

const (
	tagPrefixFR = "fr_"
	tagPrefixEN = "en_"
)

// AssetProjection is what the asset store receives next to the binary.
type AssetProjection struct {
	Tags    []string
	Context map[string]string
}

// Project maps validated metadata to language-prefixed tags and the flat
// context map. French tags come first, each block keeps its order.
func Project(m dto.UploadMetadata) AssetProjection {
	tags := make([]string, 0, len(m.Tags.FR)+len(m.Tags.EN))
	for _, t := range m.Tags.FR {
		tags = append(tags, tagPrefixFR+t)
	}
	for _, t := range m.Tags.EN {
		tags = append(tags, tagPrefixEN+t)
	}

	custom := dto.LocalizedText{}
	if m.CustomData != nil {
		custom = *m.CustomData
	}

	return AssetProjection{
		Tags: tags,
		Context: map[string]string{
			ContextCaptionFR: m.Title.FR,
			ContextCaptionEN: m.Title.EN,
			ContextAltFR:     m.Description.FR,
			ContextAltEN:     m.Description.EN,
			ContextCustomFR:  custom.FR,
			ContextCustomEN:  custom.EN,
		},
	}
}
