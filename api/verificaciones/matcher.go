package verificaciones

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"CierreCaja/api/erp"
)

// DocumentPaymentStatus is one cash-closing row: an ERP document gated on
// payment proof, joined with whatever verification exists for it.
type DocumentPaymentStatus struct {
	DocumentNumber     string          `json:"document_number"`
	DocumentType       string          `json:"document_type"`
	DocumentTypeLabel  string          `json:"document_type_label"`
	DocumentDate       string          `json:"document_date"`
	ClientName         string          `json:"client_name"`
	Amount             decimal.Decimal `json:"amount"`
	VendorCode         string          `json:"vendor_code"`
	ProcessStatus      string          `json:"process_status"`
	TargetDocumentType string          `json:"target_document_type"`

	HasVerification   bool       `json:"has_verification"`
	PaymentMethod     string     `json:"payment_method,omitempty"`
	PaymentComment    string     `json:"payment_comment,omitempty"`
	PhotoURL          *string    `json:"photo_url,omitempty"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	ReadyForInvoicing bool       `json:"ready_for_invoicing"`
}

// Summary aggregates the cash-closing coverage statistics.
type Summary struct {
	TotalDocuments          int `json:"total_documents"`
	DocumentsWithPayment    int `json:"documents_with_payment"`
	DocumentsWithoutPayment int `json:"documents_without_payment"`
	VerificationPercentage  int `json:"verification_percentage"`
}

// Match joins ERP documents against verifications. Only documents requiring
// payment verification produce a row. Verifications are keyed by
// documentNumber-documentType; on duplicate keys the first in the slice wins,
// and the store returns them newest-first, so the most recent record is the
// one matched.
func Match(docs []erp.Document, verifs []Verification) ([]DocumentPaymentStatus, Summary) {
	byKey := make(map[string]*Verification, len(verifs))
	for i := range verifs {
		key := verifs[i].DocumentNumber + "-" + verifs[i].DocumentType
		if _, ok := byKey[key]; !ok {
			byKey[key] = &verifs[i]
		}
	}

	var details []DocumentPaymentStatus
	for _, doc := range docs {
		required, targetType := erp.RequiresPaymentVerification(doc)
		if !required {
			continue
		}

		amount := doc.MntTotal()
		if amount.IsZero() {
			amount = doc.MntNeto()
		}

		status := DocumentPaymentStatus{
			DocumentNumber:     doc.NumDoc(),
			DocumentType:       doc.TipoDoc(),
			DocumentTypeLabel:  erp.TipoDocLabel(doc.TipoDoc()),
			DocumentDate:       doc.FchDoc(),
			ClientName:         doc.NomCliente(),
			Amount:             amount,
			VendorCode:         doc.VendorCode(),
			ProcessStatus:      doc.Estado(),
			TargetDocumentType: targetType,
		}

		if v, ok := byKey[status.DocumentNumber+"-"+status.DocumentType]; ok {
			status.HasVerification = true
			status.PaymentMethod = v.PaymentMethod
			status.PaymentComment = v.Comment
			status.PhotoURL = v.PhotoURL
			created := v.CreatedAt
			status.VerifiedAt = &created
			status.ReadyForInvoicing = true
		}

		details = append(details, status)
	}

	return details, Summarize(details)
}

// Summarize computes the coverage statistics; the percentage is zero when
// there are no qualifying documents.
func Summarize(details []DocumentPaymentStatus) Summary {
	s := Summary{TotalDocuments: len(details)}
	for _, d := range details {
		if d.HasVerification {
			s.DocumentsWithPayment++
		} else {
			s.DocumentsWithoutPayment++
		}
	}
	if s.TotalDocuments > 0 {
		s.VerificationPercentage = int(math.Round(float64(s.DocumentsWithPayment) / float64(s.TotalDocuments) * 100))
	}
	return s
}
