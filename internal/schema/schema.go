// =============================================================================
// Payables Dashboard - Header Alias Table
// =============================================================================
//
// Raw spreadsheet headers come in Arabic and English, with stray whitespace,
// byte-order marks and inconsistent punctuation. This package resolves each
// header cell once against a declarative alias table and returns a column
// map the row normalizer reads through.
//
// MATCHING:
//   Headers and aliases are compared on their match key: BOM stripped,
//   underscores read as spaces, case and diacritics folded, and spaces around
//   "/" removed. Unrecognized columns are ignored.
//
// CUSTOMIZATION:
//   - Add site-specific variants under header_aliases in config.yaml.
//   - Enable fuzzy_headers to fall back to the closest known alias for
//     headers that are misspelled in the sheet.
//
// =============================================================================

package schema

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/payables-dashboard/internal/textnorm"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/schollz/closestmatch"
)

// defaultAliases maps raw header variants to canonical fields.
var defaultAliases = map[string]types.Field{
	// sector
	"القطاع": types.FieldSector,
	"قطاع":   types.FieldSector,
	"sector": types.FieldSector,

	// project
	"المشروع":      types.FieldProject,
	"مشروع":        types.FieldProject,
	"اسم المشروع":  types.FieldProject,
	"project":      types.FieldProject,
	"project name": types.FieldProject,

	// account item
	"بند الحسابات": types.FieldAccountItem,
	"البند":        types.FieldAccountItem,
	"account item": types.FieldAccountItem,

	// status
	"الحالة": types.FieldStatus,
	"status": types.FieldStatus,

	// request id
	"رقم الطلب":  types.FieldRequestID,
	"request id": types.FieldRequestID,
	"request no": types.FieldRequestID,

	// code
	"الكود":        types.FieldCode,
	"كود الحساب":   types.FieldCode,
	"code":         types.FieldCode,
	"account code": types.FieldCode,

	// vendor
	"المورد":            types.FieldVendor,
	"المورد/المقاول":    types.FieldVendor,
	"المقاول":           types.FieldVendor,
	"vendor":            types.FieldVendor,
	"supplier":          types.FieldVendor,
	"contractor":        types.FieldVendor,
	"vendor/contractor": types.FieldVendor,

	// amounts
	"المبلغ":           types.FieldAmountTotal,
	"إجمالي المبلغ":    types.FieldAmountTotal,
	"amount":           types.FieldAmountTotal,
	"amount total":     types.FieldAmountTotal,
	"total amount":     types.FieldAmountTotal,
	"المنصرف":          types.FieldAmountPaid,
	"amount paid":      types.FieldAmountPaid,
	"paid":             types.FieldAmountPaid,
	"ملغي":             types.FieldAmountCanceled,
	"الملغي":           types.FieldAmountCanceled,
	"amount canceled":  types.FieldAmountCanceled,
	"amount cancelled": types.FieldAmountCanceled,
	"canceled":         types.FieldAmountCanceled,
	"cancelled":        types.FieldAmountCanceled,
	"المتبقي":          types.FieldAmountRemaining,
	"amount remaining": types.FieldAmountRemaining,
	"remaining":        types.FieldAmountRemaining,
	"balance":          types.FieldAmountRemaining,

	// dates
	"تاريخ الطلب (المصدر)":    types.FieldSourceRequestDate,
	"تاريخ الطلب من المشروع":  types.FieldSourceRequestDate,
	"تاريخ الطلب (من المشروع)": types.FieldSourceRequestDate,
	"source request date":     types.FieldSourceRequestDate,
	"request date":            types.FieldSourceRequestDate,
	"تاريخ الطلب (الصرف)":     types.FieldPaymentRequestDate,
	"تاريخ طلب الصرف":         types.FieldPaymentRequestDate,
	"payment request date":    types.FieldPaymentRequestDate,
	"تاريخ التعميد":           types.FieldApprovalDate,
	"approval date":           types.FieldApprovalDate,
	"تاريخ الصرف":             types.FieldPaymentDate,
	"payment date":            types.FieldPaymentDate,
	"paid date":               types.FieldPaymentDate,

	// submission time
	"time":         types.FieldTimeCode,
	"time code":    types.FieldTimeCode,
	"الوقت":        types.FieldTimeCode,
	"كود الوقت":    types.FieldTimeCode,
	"exact time":   types.FieldExactTime,
	"الوقت الفعلي": types.FieldExactTime,
	"وقت الإرسال":  types.FieldExactTime,

	// extras
	"description":      types.FieldDescription,
	"البيان":           types.FieldDescription,
	"الوصف":            types.FieldDescription,
	"serial":           types.FieldSerial,
	"serial payables":  types.FieldSerial,
	"مسلسل المستحقات":  types.FieldSerial,
}

// MatchKey returns the comparison form of a header cell.
func MatchKey(h string) string {
	h = textnorm.NormalizeHeaderKey(h)
	h = strings.ReplaceAll(h, "_", " ")
	h = textnorm.FoldKey(h)
	h = strings.ReplaceAll(h, " /", "/")
	h = strings.ReplaceAll(h, "/ ", "/")
	return h
}

// =============================================================================
// SCHEMA
// =============================================================================

// Schema resolves header cells to canonical fields.
type Schema struct {
	aliases map[string]types.Field
	fuzzy   *closestmatch.ClosestMatch
}

// Default returns the built-in alias table without fuzzy matching.
func Default() *Schema {
	s, _ := New(nil, false)
	return s
}

// New builds a schema from the built-in aliases plus overrides (raw header ->
// canonical field name). An override naming an unknown field is an error.
//
// PARAMETERS:
//   - overrides: extra or replacement aliases, usually from config.yaml.
//   - fuzzy: fall back to the closest known alias for unknown headers.
//
// RETURNS:
//   - The schema, or an error listing the first bad override.
func New(overrides map[string]string, fuzzy bool) (*Schema, error) {
	s := &Schema{aliases: make(map[string]types.Field, len(defaultAliases)+len(overrides))}

	for raw, field := range defaultAliases {
		s.aliases[MatchKey(raw)] = field
	}
	for _, field := range types.CanonicalFields {
		s.aliases[MatchKey(string(field))] = field
	}

	for raw, target := range overrides {
		field := types.Field(strings.TrimSpace(target))
		if !field.IsKnown() {
			return nil, fmt.Errorf("header alias %q targets unknown field %q", raw, target)
		}
		s.aliases[MatchKey(raw)] = field
	}

	if fuzzy {
		keys := make([]string, 0, len(s.aliases))
		for k := range s.aliases {
			keys = append(keys, k)
		}
		s.fuzzy = closestmatch.New(keys, []int{2, 3})
	}

	return s, nil
}

// Resolve returns the canonical field for a raw header cell.
func (s *Schema) Resolve(header string) (types.Field, bool) {
	key := MatchKey(header)
	if key == "" {
		return "", false
	}
	if field, ok := s.aliases[key]; ok {
		return field, true
	}
	if s.fuzzy == nil {
		return "", false
	}

	match := s.fuzzy.Closest(key)
	if match == "" || !closeEnough(key, match) {
		return "", false
	}
	return s.aliases[match], true
}

// closeEnough rejects fuzzy matches whose length differs too much from the
// header, so short unrelated headers do not snap onto a long alias.
func closeEnough(key, match string) bool {
	a, b := len([]rune(key)), len([]rune(match))
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= 2
}

// =============================================================================
// COLUMN MAP
// =============================================================================

// ColumnMap records which canonical field each column index feeds.
type ColumnMap struct {
	// Fields holds one entry per column; "" means the column is ignored.
	Fields []types.Field

	// Unknown lists the header cells that matched nothing.
	Unknown []string
}

// MapHeaders resolves a header row. When two columns resolve to the same
// field, the first one wins and the later one is ignored.
func (s *Schema) MapHeaders(headers []string) ColumnMap {
	cm := ColumnMap{Fields: make([]types.Field, len(headers))}
	taken := make(map[types.Field]bool)

	for i, h := range headers {
		field, ok := s.Resolve(h)
		if !ok {
			if textnorm.NormalizeHeaderKey(h) != "" {
				cm.Unknown = append(cm.Unknown, h)
			}
			continue
		}
		if taken[field] {
			continue
		}
		taken[field] = true
		cm.Fields[i] = field
	}

	return cm
}

// Has reports whether some column feeds field.
func (cm ColumnMap) Has(field types.Field) bool {
	for _, f := range cm.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Row picks the canonical values out of one raw row. Missing trailing cells
// read as empty.
func (cm ColumnMap) Row(cells []string) map[types.Field]string {
	row := make(map[types.Field]string, len(cm.Fields))
	for i, field := range cm.Fields {
		if field == "" {
			continue
		}
		if i < len(cells) {
			row[field] = cells[i]
		} else {
			row[field] = ""
		}
	}
	return row
}
