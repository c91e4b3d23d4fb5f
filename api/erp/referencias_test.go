package erp

import (
	"testing"
)

func TestParseReferences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"array", `[{"codtipodoc":"33","MontoEERR":1000},{"codtipodoc":"39","MontoEERR":2000}]`, 2},
		{"single object wrapped", `{"codtipodoc":33,"MontoEERR":1000}`, 1},
		{"malformed", `{"codtipodoc":`, 0},
		{"not json at all", "sin desglose", 0},
		{"empty array", `[]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReferences(tt.in)
			if len(got) != tt.want {
				t.Errorf("ParseReferences(%q) returned %d refs, want %d", tt.in, len(got), tt.want)
			}
		})
	}
}

func TestReferenceTypeCodeNormalization(t *testing.T) {
	tests := []struct {
		name   string
		ref    Reference
		code   string
		target bool
	}{
		{"string code", Reference{"codtipodoc": "33"}, "33", true},
		{"numeric code", Reference{"codtipodoc": float64(33)}, "33", true},
		{"numeric 39", Reference{"tipo": float64(39)}, "39", true},
		{"credit note", Reference{"codtipodoc": "61"}, "61", false},
		{"alias order", Reference{"codtipodoc": "39", "TipoDoc": "61"}, "39", true},
		{"no code", Reference{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.TypeCode(); got != tt.code {
				t.Errorf("TypeCode() = %q, want %q", got, tt.code)
			}
			if got := tt.ref.IsInvoiceTarget(); got != tt.target {
				t.Errorf("IsInvoiceTarget() = %v, want %v", got, tt.target)
			}
		})
	}
}

func TestReferenceAmountAliases(t *testing.T) {
	ref := Reference{"MontoEERR": "1.500,50", "monto": float64(999)}
	if got := ref.Amount().String(); got != "1500.5" {
		t.Errorf("Amount() = %s, want 1500.5", got)
	}
	fallback := Reference{"monto": float64(999)}
	if got := fallback.Amount().String(); got != "999" {
		t.Errorf("Amount() fallback = %s, want 999", got)
	}
}
