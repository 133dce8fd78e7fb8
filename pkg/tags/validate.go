// CLAUDE:SUMMARY Tag list validation (count, length, charset, duplicates) and the normalize-then-validate Prepare pipeline.
package tags

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	MaxTags      = 5
	MaxTagLength = 20
)

var (
	ErrTooManyTags  = errors.New("too many tags")
	ErrTagEmpty     = errors.New("empty tag")
	ErrTagTooLong   = errors.New("tag too long")
	ErrTagCharset   = errors.New("tag may only contain letters, digits, '_' and '-'")
	ErrDuplicateTag = errors.New("duplicate tag")
)

// ValidationError reports the first rule a tag list broke. Index is -1 for
// list-level rules (count, duplicates).
type ValidationError struct {
	Index int
	Tag   string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		if e.Tag != "" {
			return fmt.Sprintf("%v: %q", e.Err, e.Tag)
		}
		return e.Err.Error()
	}
	return fmt.Sprintf("tag %d (%q): %v", e.Index, e.Tag, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var tagCharset = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type tagList struct {
	Tags []string `validate:"max=5,unique,dive,required,max=20,tagchars"`
}

var tagValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("tagchars", func(fl validator.FieldLevel) bool {
		return tagCharset.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
})

// ValidateTags trims and lowercases tags and checks them: at most MaxTags,
// each 1..MaxTagLength characters from [a-zA-Z0-9_-], no duplicates.
// It returns the cleaned list.
func ValidateTags(tags []string) ([]string, error) {
	cleaned := make([]string, len(tags))
	for i, t := range tags {
		cleaned[i] = strings.ToLower(strings.TrimSpace(t))
	}

	err := tagValidator().Struct(tagList{Tags: cleaned})
	if err == nil {
		return cleaned, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return nil, err
	}
	return nil, toValidationError(verrs[0], cleaned)
}

func toValidationError(fe validator.FieldError, tags []string) *ValidationError {
	if fe.Kind() == reflect.Slice {
		switch fe.Tag() {
		case "unique":
			return &ValidationError{Index: -1, Tag: firstDuplicate(tags), Err: ErrDuplicateTag}
		default:
			return &ValidationError{Index: -1, Err: fmt.Errorf("%w (max %d, got %d)", ErrTooManyTags, MaxTags, len(tags))}
		}
	}

	idx := elementIndex(fe.Field())
	tag, _ := fe.Value().(string)
	switch fe.Tag() {
	case "required":
		return &ValidationError{Index: idx, Tag: tag, Err: ErrTagEmpty}
	case "max":
		return &ValidationError{Index: idx, Tag: tag, Err: fmt.Errorf("%w (max %d characters)", ErrTagTooLong, MaxTagLength)}
	default:
		return &ValidationError{Index: idx, Tag: tag, Err: ErrTagCharset}
	}
}

// elementIndex extracts 2 from "Tags[2]".
func elementIndex(field string) int {
	open := strings.LastIndexByte(field, '[')
	if open < 0 || !strings.HasSuffix(field, "]") {
		return -1
	}
	i, err := strconv.Atoi(field[open+1 : len(field)-1])
	if err != nil {
		return -1
	}
	return i
}

func firstDuplicate(tags []string) string {
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if seen[t] {
			return t
		}
		seen[t] = true
	}
	return ""
}

// Prepare normalizes raw tags, drops empty results and repeats (first
// occurrence wins), then validates the canonical list. Normalization runs
// first so that spellings the validator would reject ("Vue.js", "C++")
// get a chance to resolve to an accepted canonical.
func (n *Normalizer) Prepare(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		t := n.Normalize(r)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return ValidateTags(out)
}
