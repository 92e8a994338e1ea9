// Package validation holds the upload metadata schema. It is pure and is used
// both by the uploader client before sending and by the server as the
// authoritative gate.
package validation

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/amirphl/portfolio/app/dto"
	"github.com/go-playground/validator/v10"
)

// Limits shared by every producer and consumer of UploadMetadata.
const (
	TitleMax       = 120
	DescriptionMax = 2000
	CustomDataMax  = 500
	TagMaxLen      = 50
	TagMaxCount    = 30
)

// Issue is one field-level validation failure.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result is either a canonical metadata object or the ordered issues.
type Result struct {
	Metadata *dto.UploadMetadata
	Issues   []Issue
}

// Valid reports whether validation produced a canonical object.
func (r Result) Valid() bool {
	return len(r.Issues) == 0 && r.Metadata != nil
}

// FirstMessage returns the message surfaced to end users.
func (r Result) FirstMessage() string {
	if len(r.Issues) == 0 {
		return ""
	}
	return r.Issues[0].Message
}

type titleRules struct {
	FR string `json:"fr" validate:"required,max=120"`
	EN string `json:"en" validate:"required,max=120"`
}

type descriptionRules struct {
	FR string `json:"fr" validate:"required,max=2000"`
	EN string `json:"en" validate:"required,max=2000"`
}

// tagRules only carries the per-element rules. The list rules are checked on
// their own in tagListIssues so one failing rule never hides another.
type tagRules struct {
	FR []string `json:"fr" validate:"dive,required,max=50"`
	EN []string `json:"en" validate:"dive,required,max=50"`
}

// List level rules, in reporting order.
const (
	tagCountRule  = "max=30"
	tagUniqueRule = "unique_ci"
)

type customDataRules struct {
	FR string `json:"fr" validate:"max=500"`
	EN string `json:"en" validate:"max=500"`
}

// metadataRules declares field order; issues are reported in this order.
type metadataRules struct {
	Title       titleRules       `json:"title"`
	Description descriptionRules `json:"description"`
	Tags        tagRules         `json:"tags"`
	CustomData  customDataRules  `json:"customData"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("unique_ci", uniqueCaseInsensitive); err != nil {
		panic(err)
	}
	return v
}

func uniqueCaseInsensitive(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	seen := make(map[string]struct{}, field.Len())
	for i := 0; i < field.Len(); i++ {
		key := strings.ToLower(field.Index(i).String())
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

// Validate normalises candidate (trimming every value, defaulting custom data
// and tag lists) and checks it against the schema. The candidate itself is
// not modified.
func Validate(candidate dto.UploadMetadata) Result {
	canonical := Normalize(candidate)

	rules := metadataRules{
		Title:       titleRules{FR: canonical.Title.FR, EN: canonical.Title.EN},
		Description: descriptionRules{FR: canonical.Description.FR, EN: canonical.Description.EN},
		Tags:        tagRules{FR: canonical.Tags.FR, EN: canonical.Tags.EN},
		CustomData:  customDataRules{FR: canonical.CustomData.FR, EN: canonical.CustomData.EN},
	}

	var head, tagsFR, tagsEN, tail []Issue
	if err := validate.Struct(rules); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return Result{Issues: []Issue{{Path: "", Message: "Métadonnées invalides"}}}
		}
		for _, fe := range fieldErrs {
			path := issuePath(fe)
			issue := Issue{Path: path, Message: issueMessage(path, fe.Tag())}
			switch {
			case strings.HasPrefix(path, "tags.fr"):
				tagsFR = append(tagsFR, issue)
			case strings.HasPrefix(path, "tags.en"):
				tagsEN = append(tagsEN, issue)
			case strings.HasPrefix(path, "customData"):
				tail = append(tail, issue)
			default:
				head = append(head, issue)
			}
		}
	}

	// element issues, then the count per language, then duplicates
	tagsFR = append(tagsFR, tagListIssues("tags.fr", canonical.Tags.FR, tagCountRule)...)
	tagsEN = append(tagsEN, tagListIssues("tags.en", canonical.Tags.EN, tagCountRule)...)
	dups := append(
		tagListIssues("tags.fr", canonical.Tags.FR, tagUniqueRule),
		tagListIssues("tags.en", canonical.Tags.EN, tagUniqueRule)...,
	)

	issues := slices.Concat(head, tagsFR, tagsEN, dups, tail)
	if len(issues) == 0 {
		return Result{Metadata: &canonical}
	}
	return Result{Issues: issues}
}

// tagListIssues checks one list level rule against a tag list.
func tagListIssues(path string, tags []string, rule string) []Issue {
	err := validate.Var(tags, rule)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return []Issue{{Path: path, Message: "Métadonnées invalides"}}
	}
	return []Issue{{Path: path, Message: issueMessage(path, fieldErrs[0].Tag())}}
}

// Normalize returns a trimmed copy of m with defaults applied.
func Normalize(m dto.UploadMetadata) dto.UploadMetadata {
	custom := dto.LocalizedText{}
	if m.CustomData != nil {
		custom = trimText(*m.CustomData)
	}
	return dto.UploadMetadata{
		Title:       trimText(m.Title),
		Description: trimText(m.Description),
		Tags: dto.LocalizedTagSet{
			FR: trimList(m.Tags.FR),
			EN: trimList(m.Tags.EN),
		},
		CustomData: &custom,
	}
}

func trimText(t dto.LocalizedText) dto.LocalizedText {
	return dto.LocalizedText{FR: strings.TrimSpace(t.FR), EN: strings.TrimSpace(t.EN)}
}

func trimList(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// issuePath strips the root struct name: "metadataRules.tags.fr[1]" -> "tags.fr[1]".
func issuePath(fe validator.FieldError) string {
	_, path, _ := strings.Cut(fe.Namespace(), ".")
	return path
}

// sideOf maps a path to the language label used in messages.
func sideOf(path string) string {
	if strings.Contains(path, ".en") {
		return "EN"
	}
	return "FR"
}

func issueMessage(path, tag string) string {
	side := sideOf(path)
	section, _, _ := strings.Cut(path, ".")
	element := strings.HasSuffix(path, "]")

	switch section {
	case "title":
		if tag == "required" {
			if side == "FR" {
				return "Titre (FR) requis"
			}
			return "Title (EN) required"
		}
		if side == "FR" {
			return fmt.Sprintf("Titre (FR) trop long (max %d)", TitleMax)
		}
		return fmt.Sprintf("Title (EN) too long (max %d)", TitleMax)

	case "description":
		if tag == "required" {
			if side == "FR" {
				return "Description (FR) requise"
			}
			return "Description (EN) required"
		}
		if side == "FR" {
			return fmt.Sprintf("Description (FR) trop longue (max %d)", DescriptionMax)
		}
		return fmt.Sprintf("Description (EN) too long (max %d)", DescriptionMax)

	case "customData":
		if side == "FR" {
			return fmt.Sprintf("Données perso (FR) trop longues (max %d)", CustomDataMax)
		}
		return fmt.Sprintf("Custom data (EN) too long (max %d)", CustomDataMax)

	case "tags":
		switch {
		case element && tag == "required":
			return "Tag vide interdit"
		case element:
			return fmt.Sprintf("Tag trop long (>%d)", TagMaxLen)
		case tag == "unique_ci":
			return fmt.Sprintf("Tags %s en doublon", side)
		default:
			return fmt.Sprintf("Trop de tags %s (max %d)", side, TagMaxCount)
		}
	}
	return path + " is invalid"
}
