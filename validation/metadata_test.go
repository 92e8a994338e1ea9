package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/amirphl/portfolio/app/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMetadata() dto.UploadMetadata {
	return dto.UploadMetadata{
		Title:       dto.LocalizedText{FR: "Titre", EN: "Title"},
		Description: dto.LocalizedText{FR: "Desc", EN: "Desc"},
		Tags:        dto.LocalizedTagSet{FR: []string{"chat"}, EN: []string{"cat"}},
		CustomData:  &dto.LocalizedText{FR: "", EN: ""},
	}
}

func TestValidate_AcceptsWellFormedMetadata(t *testing.T) {
	res := Validate(validMetadata())

	require.True(t, res.Valid())
	assert.Empty(t, res.Issues)
	assert.Equal(t, "Titre", res.Metadata.Title.FR)
	assert.Equal(t, []string{"chat"}, res.Metadata.Tags.FR)
}

func TestValidate_TrimsAndDefaults(t *testing.T) {
	m := dto.UploadMetadata{
		Title:       dto.LocalizedText{FR: "  Titre ", EN: "\tTitle\n"},
		Description: dto.LocalizedText{FR: " d ", EN: " e "},
		Tags:        dto.LocalizedTagSet{FR: []string{" chat "}},
	}

	res := Validate(m)

	require.True(t, res.Valid())
	assert.Equal(t, dto.LocalizedText{FR: "Titre", EN: "Title"}, res.Metadata.Title)
	assert.Equal(t, dto.LocalizedText{FR: "d", EN: "e"}, res.Metadata.Description)
	assert.Equal(t, []string{"chat"}, res.Metadata.Tags.FR)
	assert.NotNil(t, res.Metadata.Tags.EN)
	require.NotNil(t, res.Metadata.CustomData)
	assert.Equal(t, dto.LocalizedText{}, *res.Metadata.CustomData)

	// the candidate is left untouched
	assert.Equal(t, "  Titre ", m.Title.FR)
	assert.Nil(t, m.CustomData)
}

func TestValidate_Title(t *testing.T) {
	tests := []struct {
		name    string
		title   dto.LocalizedText
		valid   bool
		message string
		path    string
	}{
		{name: "empty fr", title: dto.LocalizedText{FR: "", EN: "Title"}, message: "Titre (FR) requis", path: "title.fr"},
		{name: "blank fr", title: dto.LocalizedText{FR: "   ", EN: "Title"}, message: "Titre (FR) requis", path: "title.fr"},
		{name: "empty en", title: dto.LocalizedText{FR: "Titre", EN: " "}, message: "Title (EN) required", path: "title.en"},
		{name: "single char", title: dto.LocalizedText{FR: "a", EN: "b"}, valid: true},
		{name: "at max", title: dto.LocalizedText{FR: strings.Repeat("é", TitleMax), EN: strings.Repeat("e", TitleMax)}, valid: true},
		{name: "over max", title: dto.LocalizedText{FR: "Titre", EN: strings.Repeat("e", TitleMax+1)}, message: "Title (EN) too long (max 120)", path: "title.en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMetadata()
			m.Title = tt.title

			res := Validate(m)

			assert.Equal(t, tt.valid, res.Valid())
			if !tt.valid {
				require.NotEmpty(t, res.Issues)
				assert.Equal(t, tt.message, res.FirstMessage())
				assert.Equal(t, tt.path, res.Issues[0].Path)
				assert.Nil(t, res.Metadata)
			}
		})
	}
}

func TestValidate_Description(t *testing.T) {
	m := validMetadata()
	m.Description = dto.LocalizedText{FR: "", EN: strings.Repeat("x", DescriptionMax)}
	res := Validate(m)
	assert.Equal(t, "Description (FR) requise", res.FirstMessage())

	m.Description = dto.LocalizedText{FR: "ok", EN: strings.Repeat("x", DescriptionMax+1)}
	res = Validate(m)
	assert.Equal(t, "Description (EN) too long (max 2000)", res.FirstMessage())
}

func TestValidate_CustomData(t *testing.T) {
	m := validMetadata()
	m.CustomData = &dto.LocalizedText{FR: "", EN: "only english"}
	assert.True(t, Validate(m).Valid())

	m.CustomData = &dto.LocalizedText{FR: strings.Repeat("x", CustomDataMax+1)}
	res := Validate(m)
	assert.Equal(t, "customData.fr", res.Issues[0].Path)
	assert.Equal(t, "Données perso (FR) trop longues (max 500)", res.FirstMessage())
}

func TestValidate_Tags(t *testing.T) {
	tooMany := make([]string, TagMaxCount+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("tag%d", i)
	}
	atLimit := tooMany[:TagMaxCount]

	tests := []struct {
		name    string
		tags    dto.LocalizedTagSet
		valid   bool
		message string
		path    string
	}{
		{name: "distinct", tags: dto.LocalizedTagSet{FR: []string{"Cat", "Dog"}, EN: []string{}}, valid: true},
		{name: "case insensitive duplicate", tags: dto.LocalizedTagSet{FR: []string{"Cat", "cat"}}, message: "Tags FR en doublon", path: "tags.fr"},
		{name: "duplicate en", tags: dto.LocalizedTagSet{FR: []string{"chat"}, EN: []string{"Night", "NIGHT"}}, message: "Tags EN en doublon", path: "tags.en"},
		{name: "same tag across languages", tags: dto.LocalizedTagSet{FR: []string{"portrait"}, EN: []string{"portrait"}}, valid: true},
		{name: "empty tag", tags: dto.LocalizedTagSet{FR: []string{"ok", "  "}}, message: "Tag vide interdit", path: "tags.fr[1]"},
		{name: "tag too long", tags: dto.LocalizedTagSet{EN: []string{strings.Repeat("t", TagMaxLen+1)}}, message: "Tag trop long (>50)", path: "tags.en[0]"},
		{name: "at count limit", tags: dto.LocalizedTagSet{FR: atLimit}, valid: true},
		{name: "over count limit", tags: dto.LocalizedTagSet{FR: tooMany}, message: "Trop de tags FR (max 30)", path: "tags.fr"},
		{name: "no tags at all", tags: dto.LocalizedTagSet{}, valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMetadata()
			m.Tags = tt.tags

			res := Validate(m)

			assert.Equal(t, tt.valid, res.Valid())
			if !tt.valid {
				require.NotEmpty(t, res.Issues)
				assert.Equal(t, tt.message, res.FirstMessage())
				assert.Equal(t, tt.path, res.Issues[0].Path)
			}
		})
	}
}

func TestValidate_ReportsAllIssuesInFieldOrder(t *testing.T) {
	m := dto.UploadMetadata{
		Tags:       dto.LocalizedTagSet{EN: []string{"a", "A"}},
		CustomData: &dto.LocalizedText{EN: strings.Repeat("x", CustomDataMax+1)},
	}

	res := Validate(m)

	require.False(t, res.Valid())
	paths := make([]string, 0, len(res.Issues))
	for _, issue := range res.Issues {
		paths = append(paths, issue.Path)
	}
	assert.Equal(t, []string{
		"title.fr", "title.en",
		"description.fr", "description.en",
		"tags.en",
		"customData.en",
	}, paths)
	assert.Equal(t, "Titre (FR) requis", res.FirstMessage())
}

func TestValidate_TagListRulesAreIndependent(t *testing.T) {
	t.Run("empty tag reported before duplicates", func(t *testing.T) {
		m := validMetadata()
		m.Tags = dto.LocalizedTagSet{FR: []string{"", "Cat", "cat"}}

		res := Validate(m)

		require.False(t, res.Valid())
		assert.Equal(t, []Issue{
			{Path: "tags.fr[0]", Message: "Tag vide interdit"},
			{Path: "tags.fr", Message: "Tags FR en doublon"},
		}, res.Issues)
		assert.Equal(t, "Tag vide interdit", res.FirstMessage())
	})

	t.Run("oversized list still reports its elements and duplicates", func(t *testing.T) {
		fr := []string{"", "Cat", "cat"}
		for i := 0; i < TagMaxCount; i++ {
			fr = append(fr, fmt.Sprintf("t%d", i))
		}
		m := validMetadata()
		m.Tags = dto.LocalizedTagSet{FR: fr, EN: []string{"Night", "night"}}

		res := Validate(m)

		require.False(t, res.Valid())
		assert.Equal(t, []Issue{
			{Path: "tags.fr[0]", Message: "Tag vide interdit"},
			{Path: "tags.fr", Message: "Trop de tags FR (max 30)"},
			{Path: "tags.fr", Message: "Tags FR en doublon"},
			{Path: "tags.en", Message: "Tags EN en doublon"},
		}, res.Issues)
	})
}
