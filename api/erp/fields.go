package erp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// The ERP has renamed several fields over the years and old rows still carry
// the old names. Every lookup goes through one ordered alias chain so the
// "which name wins" policy lives in a single place.
var (
	typeCodeAliases    = []string{"codtipodoc", "CodTipoDoc", "tipo", "TipoDoc", "type"}
	amountAliases      = []string{"MontoEERR", "monto", "Monto", "amount"}
	vendorLabelAliases = []string{"Vendedor", "CodVend"}
	vendorCodeAliases  = []string{"CodVend", "Vendedor"}
	estadoAliases      = []string{"EstadoProcesoDoc", "EstadoDoc"}
)

// firstField returns the first alias present in m with a non-nil value.
func firstField(m map[string]interface{}, aliases []string) (interface{}, bool) {
	for _, name := range aliases {
		if v, ok := m[name]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// asString renders a scalar JSON value as its string form. Numeric values
// come out without a decimal point when they are whole, so "33" and 33
// normalize to the same string.
func asString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", s))
	}
}

// ParseAmount turns a JSON scalar into a decimal. Upstream sends amounts as
// numbers or as strings, and string amounts sometimes carry locale
// separators ("1.234,56" or "1,234.56"). Unparseable input is zero: absent
// or garbage amounts behave like no amount at all.
func ParseAmount(v interface{}) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Zero
		}
		s = normalizeSeparators(s)
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// normalizeSeparators rewrites locale-formatted amounts into plain decimal
// syntax. When both '.' and ',' appear the rightmost one is the decimal
// separator; a lone ',' is treated as the decimal separator.
func normalizeSeparators(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	return s
}
