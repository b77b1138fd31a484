// Package classification assigns spend categories to transactions using an
// ordered list of keyword rules over the description text.
package classification

import "strings"

// Rule ties a category to the description substrings that select it.
type Rule struct {
	Category string
	Keywords []string
}

// Classifier evaluates rules in slice order; the first matching rule wins,
// so a description matching several rules always lands in the earliest one.
// Rule order is therefore part of the contract, not an implementation
// detail.
type Classifier struct {
	rules []Rule
}

// New returns a classifier loaded with the default rule set.
func New() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// NewWithRules returns a classifier using a custom ordered rule list.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the category for a transaction description. Matching is
// case-insensitive substring containment. When no rule fires, a nonempty
// source-provided label wins, then the default bucket.
func (c *Classifier) Classify(description, provided string) string {
	desc := strings.ToLower(description)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(desc, keyword) {
				return rule.Category
			}
		}
	}
	if label := strings.TrimSpace(provided); label != "" {
		return label
	}
	return DefaultCategory
}
