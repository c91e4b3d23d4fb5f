package verificaciones

import (
	"testing"
	"time"

	"CierreCaja/api/erp"
)

func gatedDoc(num, tipo string, refCode string) erp.Document {
	return erp.Document{
		"NumDoc":           num,
		"TipoDoc":          tipo,
		"EstadoProcesoDoc": "A",
		"MntTotal":         float64(10000),
		"Desglose":         `[{"codtipodoc":"` + refCode + `","MontoEERR":10000}]`,
	}
}

func TestMatchJoinsVerifications(t *testing.T) {
	docs := []erp.Document{
		gatedDoc("100", "CT", "33"),
		gatedDoc("200", "NV", "39"),
		// Pending documents are not cash-closing rows.
		{"NumDoc": "300", "TipoDoc": "CT", "EstadoProcesoDoc": "P"},
	}
	photo := "/uploads/payment-verifications/x.jpg"
	verifs := []Verification{
		{
			DocumentNumber: "100",
			DocumentType:   "CT",
			PaymentMethod:  MetodoTransferencia,
			Comment:        "pagado por transferencia",
			PhotoURL:       &photo,
			CreatedAt:      time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		},
	}

	details, summary := Match(docs, verifs)
	if len(details) != 2 {
		t.Fatalf("len(details) = %d, want 2", len(details))
	}

	ct := details[0]
	if ct.DocumentNumber != "100" || !ct.HasVerification || !ct.ReadyForInvoicing {
		t.Errorf("CT row = %+v", ct)
	}
	if ct.PaymentMethod != MetodoTransferencia || ct.PhotoURL == nil {
		t.Errorf("CT verification fields = %+v", ct)
	}
	if ct.TargetDocumentType != "Factura" {
		t.Errorf("CT target = %q", ct.TargetDocumentType)
	}
	if ct.DocumentTypeLabel != "Cotización" {
		t.Errorf("CT label = %q", ct.DocumentTypeLabel)
	}

	nv := details[1]
	if nv.HasVerification || nv.ReadyForInvoicing {
		t.Errorf("NV row should be unverified: %+v", nv)
	}
	if nv.TargetDocumentType != "Boleta" {
		t.Errorf("NV target = %q", nv.TargetDocumentType)
	}

	if summary.TotalDocuments != 2 || summary.DocumentsWithPayment != 1 || summary.DocumentsWithoutPayment != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.VerificationPercentage != 50 {
		t.Errorf("percentage = %d, want 50", summary.VerificationPercentage)
	}
}

func TestMatchDuplicateVerificationsFirstWins(t *testing.T) {
	docs := []erp.Document{gatedDoc("100", "CT", "33")}
	// The store lists newest first, so the first duplicate is the most
	// recent record.
	verifs := []Verification{
		{DocumentNumber: "100", DocumentType: "CT", PaymentMethod: MetodoWebpay,
			CreatedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)},
		{DocumentNumber: "100", DocumentType: "CT", PaymentMethod: MetodoEfectivo,
			CreatedAt: time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)},
	}
	details, _ := Match(docs, verifs)
	if len(details) != 1 {
		t.Fatalf("len(details) = %d", len(details))
	}
	if details[0].PaymentMethod != MetodoWebpay {
		t.Errorf("PaymentMethod = %q, want webpay", details[0].PaymentMethod)
	}
}

func TestMatchTypeScopedKeys(t *testing.T) {
	// Same document number under both types; each matches only its own.
	docs := []erp.Document{gatedDoc("100", "CT", "33"), gatedDoc("100", "NV", "39")}
	verifs := []Verification{
		{DocumentNumber: "100", DocumentType: "NV", PaymentMethod: MetodoEfectivo},
	}
	details, summary := Match(docs, verifs)
	if len(details) != 2 {
		t.Fatalf("len(details) = %d", len(details))
	}
	for _, d := range details {
		if d.DocumentType == "NV" && !d.HasVerification {
			t.Error("NV row should be verified")
		}
		if d.DocumentType == "CT" && d.HasVerification {
			t.Error("CT row should not be verified")
		}
	}
	if summary.VerificationPercentage != 50 {
		t.Errorf("percentage = %d", summary.VerificationPercentage)
	}
}

func TestMatchAmountFallsBackToNeto(t *testing.T) {
	doc := erp.Document{
		"NumDoc":           "100",
		"TipoDoc":          "CT",
		"EstadoProcesoDoc": "A",
		"MntNeto":          float64(8400),
		"Desglose":         `[{"codtipodoc":"33","MontoEERR":8400}]`,
	}
	details, _ := Match([]erp.Document{doc}, nil)
	if len(details) != 1 {
		t.Fatalf("len(details) = %d", len(details))
	}
	if details[0].Amount.String() != "8400" {
		t.Errorf("Amount = %s, want 8400", details[0].Amount)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name       string
		with       int
		without    int
		percentage int
	}{
		{"empty", 0, 0, 0},
		{"all verified", 3, 0, 100},
		{"none verified", 0, 4, 0},
		{"two thirds rounds up", 2, 1, 67},
		{"one third rounds down", 1, 2, 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var details []DocumentPaymentStatus
			for i := 0; i < tt.with; i++ {
				details = append(details, DocumentPaymentStatus{HasVerification: true})
			}
			for i := 0; i < tt.without; i++ {
				details = append(details, DocumentPaymentStatus{})
			}
			s := Summarize(details)
			if s.VerificationPercentage != tt.percentage {
				t.Errorf("percentage = %d, want %d", s.VerificationPercentage, tt.percentage)
			}
			if s.TotalDocuments != tt.with+tt.without {
				t.Errorf("total = %d", s.TotalDocuments)
			}
		})
	}
}
