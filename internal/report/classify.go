package report

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/openefficiency/aegisv11-sub000/pkg/types"
)

type categoryRule struct {
	category types.Category
	keywords []string
}

// Rules are tested in order and the first match wins.
var categoryRules = []categoryRule{
	{types.CategoryDiscrimination, []string{"discriminat", "racis", "sexis", "prejudice", "bias", "unfair treatment", "ethnicity", "religion", "disability"}},
	{types.CategoryHarassment, []string{"harass", "bully", "bullied", "intimidat", "threaten", "stalk", "inappropriate comment", "unwanted", "hostile"}},
	{types.CategoryFraud, []string{"fraud", "embezzl", "steal", "stole", "theft", "scam", "falsif", "fake invoice", "money", "accounting", "expense"}},
	{types.CategoryAbuse, []string{"abuse", "abusive", "assault", "violence", "violent", "neglect", "misuse"}},
	{types.CategorySafety, []string{"safety", "unsafe", "hazard", "danger", "injur", "accident", "toxic", "chemical", "fire exit", "leak"}},
	{types.CategoryCorruption, []string{"corrupt", "brib", "kickback", "conflict of interest", "nepotism", "favoritism", "under the table"}},
}

type priorityRule struct {
	priority types.Priority
	keywords []string
}

var priorityRules = []priorityRule{
	{types.PriorityCritical, []string{"immediate", "urgent", "danger", "threat", "critical", "killed", "injury", "emergency"}},
	{types.PriorityHigh, []string{"serious", "severe", "ongoing", "repeated", "weapon", "assault", "significant", "multiple times"}},
	{types.PriorityLow, []string{"minor", "small", "suggestion", "a long time ago"}},
}

// categoryPriority applies when a text matches no priority keyword.
var categoryPriority = map[types.Category]types.Priority{
	types.CategoryFraud:          types.PriorityMedium,
	types.CategoryAbuse:          types.PriorityHigh,
	types.CategoryDiscrimination: types.PriorityMedium,
	types.CategoryHarassment:     types.PriorityHigh,
	types.CategorySafety:         types.PriorityHigh,
	types.CategoryCorruption:     types.PriorityHigh,
}

// DefaultCategory is returned when no category keyword matches.
const DefaultCategory = types.CategoryFraud

// Classifier derives category and priority from free text with keyword rules.
// Matching is plain substring containment unless word boundaries are enabled,
// in which case a keyword must start at the beginning of a word.
type Classifier struct {
	wordBoundaries bool
}

type ClassifierOption func(*Classifier)

func WithWordBoundaries(enabled bool) ClassifierOption {
	return func(c *Classifier) { c.wordBoundaries = enabled }
}

func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) Categorize(text string) types.Category {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		if c.matchAny(lower, rule.keywords) {
			return rule.category
		}
	}
	return DefaultCategory
}

func (c *Classifier) Prioritize(text string) types.Priority {
	if p, ok := c.scanPriority(strings.ToLower(text)); ok {
		return p
	}
	return types.PriorityMedium
}

// PriorityFor prefers an explicit keyword match and otherwise falls back to
// the default priority of category.
func (c *Classifier) PriorityFor(category types.Category, text string) types.Priority {
	if p, ok := c.scanPriority(strings.ToLower(text)); ok {
		return p
	}
	if p, ok := categoryPriority[category]; ok {
		return p
	}
	return types.PriorityMedium
}

func (c *Classifier) scanPriority(lower string) (types.Priority, bool) {
	for _, rule := range priorityRules {
		if c.matchAny(lower, rule.keywords) {
			return rule.priority, true
		}
	}
	return "", false
}

func (c *Classifier) matchAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if c.wordBoundaries {
			if containsAtWordStart(lower, kw) {
				return true
			}
			continue
		}
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func containsAtWordStart(text, kw string) bool {
	offset := 0
	for {
		i := strings.Index(text[offset:], kw)
		if i < 0 {
			return false
		}
		at := offset + i
		if at == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(text[:at])
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			return true
		}
		offset = at + 1
	}
}
