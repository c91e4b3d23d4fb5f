package erp

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Reference is one downstream invoice/receipt entry parsed out of a
// document's Desglose field.
type Reference map[string]interface{}

// TypeCode returns the reference type normalized to string form, so numeric
// 33 and string "33" compare equal.
func (r Reference) TypeCode() string {
	if v, ok := firstField(r, typeCodeAliases); ok {
		return asString(v)
	}
	return ""
}

func (r Reference) Amount() decimal.Decimal {
	if v, ok := firstField(r, amountAliases); ok {
		return ParseAmount(v)
	}
	return decimal.Zero
}

// IsInvoiceTarget reports whether the reference points at an invoice (33) or
// receipt (39) target.
func (r Reference) IsInvoiceTarget() bool {
	c := r.TypeCode()
	return c == "33" || c == "39"
}

// ParseReferences parses a Desglose value into typed references. A missing,
// empty or malformed breakdown is the normal "no linked invoice yet" case,
// so this never returns an error: it degrades to an empty list. A single
// JSON object is wrapped into a one-element list.
func ParseReferences(desglose string) []Reference {
	if desglose == "" {
		return nil
	}
	var arr []Reference
	if err := json.Unmarshal([]byte(desglose), &arr); err == nil {
		return arr
	}
	var one Reference
	if err := json.Unmarshal([]byte(desglose), &one); err == nil {
		return []Reference{one}
	}
	return nil
}

// RawReferences keeps every field of every breakdown entry as-is for the
// detail display, independent of the typed Reference view.
func RawReferences(desglose string) []map[string]interface{} {
	refs := ParseReferences(desglose)
	if len(refs) == 0 {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(refs))
	for _, r := range refs {
		out = append(out, map[string]interface{}(r))
	}
	return out
}
