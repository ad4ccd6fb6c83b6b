// =============================================================================
// Payables Dashboard - Field Cleanup Rules
// =============================================================================
//
// Optional per-field cleanup applied to the canonical row before it is turned
// into a Record. Sites use it to strip legal suffixes from vendor names, map
// legacy project codes to names, or fill an empty exact-time column from the
// coarse time code.
//
// SUPPORTED ACTIONS:
//   trim, uppercase, lowercase, normalize_whitespace, extract_digits,
//   replace (find -> value), regex_replace (find -> value),
//   lookup, lookup_with_default (value is the default),
//   if_empty_use_default (value), if_empty_use_field (value names a field)
//
// =============================================================================

package normalizer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ginjaninja78/payables-dashboard/internal/config"
	"github.com/ginjaninja78/payables-dashboard/internal/textnorm"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
)

// Cleaner applies configured field rules to canonical rows.
type Cleaner struct {
	rules   []config.FieldRule
	regexes map[string]*regexp.Regexp
}

// NewCleaner compiles the rules. Regular expressions are compiled once here
// rather than per row.
func NewCleaner(rules []config.FieldRule) (*Cleaner, error) {
	c := &Cleaner{rules: rules, regexes: make(map[string]*regexp.Regexp)}

	for _, rule := range rules {
		for _, action := range rule.Actions {
			if action.Type != "regex_replace" || action.Find == "" {
				continue
			}
			if _, ok := c.regexes[action.Find]; ok {
				continue
			}
			re, err := regexp.Compile(action.Find)
			if err != nil {
				return nil, fmt.Errorf("field %s: invalid regex pattern: %w", rule.Field, err)
			}
			c.regexes[action.Find] = re
		}
	}

	return c, nil
}

// Apply returns a copy of row with every rule applied, in configuration
// order. Rules see the values produced by earlier rules.
func (c *Cleaner) Apply(row map[types.Field]string) map[types.Field]string {
	if c == nil || len(c.rules) == 0 {
		return row
	}

	out := make(map[types.Field]string, len(row))
	for k, v := range row {
		out[k] = v
	}

	for _, rule := range c.rules {
		field := types.Field(rule.Field)
		value := out[field]
		for _, action := range rule.Actions {
			value = c.applyAction(value, action, out)
		}
		out[field] = value
	}

	return out
}

// applyAction applies a single cleanup action.
//
// PARAMETERS:
//   - value: The current value.
//   - action: The action to apply.
//   - row: The whole row, for if_empty_use_field.
//
// RETURNS:
//   - The new value. Unknown action types leave the value unchanged; config
//     validation rejects them before a Cleaner is built.
func (c *Cleaner) applyAction(value string, action config.FieldAction, row map[types.Field]string) string {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "trim":
		return strings.TrimSpace(value)

	case "uppercase":
		return strings.ToUpper(value)

	case "lowercase":
		return strings.ToLower(value)

	case "normalize_whitespace":
		return textnorm.NormalizeText(value)

	case "extract_digits":
		// "INV-00123/B" -> "00123"
		return strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return r
			}
			return -1
		}, value)

	case "replace":
		if action.Find == "" {
			return value
		}
		return strings.ReplaceAll(value, action.Find, action.Value)

	case "regex_replace":
		re, ok := c.regexes[action.Find]
		if !ok {
			return value
		}
		return re.ReplaceAllString(value, action.Value)

	// =========================================================================
	// LOOKUP TABLE REPLACEMENTS
	// =========================================================================

	case "lookup":
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement
		}
		return value

	case "lookup_with_default":
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement
		}
		return action.Value

	// =========================================================================
	// EMPTY-VALUE FALLBACKS
	// =========================================================================

	case "if_empty_use_default":
		if textnorm.NormalizeText(value) == "" {
			return action.Value
		}
		return value

	case "if_empty_use_field":
		if textnorm.NormalizeText(value) == "" {
			return row[types.Field(action.Value)]
		}
		return value
	}

	return value
}
