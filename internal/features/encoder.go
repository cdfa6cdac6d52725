package features

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/compliancelens/backend/internal/domain"
)

// UnknownCategory is the label used for records with no category
const UnknownCategory = "Unknown"

// CategoryEncoder assigns stable integer codes to category labels.
// Codes follow sorted label order. The encoder is immutable once built.
type CategoryEncoder struct {
	classes []string
	codes   map[string]int
}

// CategoryLabel returns the label a record's category is encoded under
func CategoryLabel(category *string) string {
	if category == nil || strings.TrimSpace(*category) == "" {
		return UnknownCategory
	}
	return *category
}

// FitCategoryEncoder builds an encoder over every label seen in categories
func FitCategoryEncoder(categories []*string) CategoryEncoder {
	seen := make(map[string]struct{})
	for _, c := range categories {
		seen[CategoryLabel(c)] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for label := range seen {
		classes = append(classes, label)
	}
	return NewCategoryEncoder(classes)
}

// NewCategoryEncoder builds an encoder from an explicit class list
func NewCategoryEncoder(classes []string) CategoryEncoder {
	sorted := make([]string, len(classes))
	copy(sorted, classes)
	sort.Strings(sorted)

	codes := make(map[string]int, len(sorted))
	unique := sorted[:0]
	for _, label := range sorted {
		if _, dup := codes[label]; dup {
			continue
		}
		codes[label] = len(unique)
		unique = append(unique, label)
	}
	return CategoryEncoder{classes: unique, codes: codes}
}

// Encode returns the code for a record's category.
// A label not seen at fit time is an *domain.UnknownCategoryError.
func (e CategoryEncoder) Encode(category *string) (int, error) {
	label := CategoryLabel(category)
	code, ok := e.codes[label]
	if !ok {
		return 0, &domain.UnknownCategoryError{Category: label}
	}
	return code, nil
}

// Decode returns the label for a code
func (e CategoryEncoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.classes) {
		return "", fmt.Errorf("%w: code %d out of range", domain.ErrUnknownCategory, code)
	}
	return e.classes[code], nil
}

// Classes returns the fitted labels in code order
func (e CategoryEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// Len returns the number of fitted labels
func (e CategoryEncoder) Len() int {
	return len(e.classes)
}

func (e CategoryEncoder) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.classes)
}

func (e *CategoryEncoder) UnmarshalJSON(data []byte) error {
	var classes []string
	if err := json.Unmarshal(data, &classes); err != nil {
		return err
	}
	*e = NewCategoryEncoder(classes)
	return nil
}
