package verificaciones

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"CierreCaja/internal/config"
)

func validInput() CreateInput {
	return CreateInput{
		DocumentNumber: "4512",
		DocumentType:   "CT",
		Comment:        "pago recibido",
		PaymentMethod:  MetodoTransferencia,
	}
}

func jpeg(size int) *Photo {
	return &Photo{Data: bytes.Repeat([]byte{0xFF}, size), ContentType: "image/jpeg", Filename: "proof.jpg"}
}

// Validation runs before any storage access, so a zero Store exercises the
// rejection paths.
func TestCreateRejectsInvalidInput(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	tests := []struct {
		name  string
		in    CreateInput
		photo *Photo
		want  error
	}{
		{
			name: "unknown payment method",
			in: CreateInput{DocumentNumber: "1", DocumentType: "CT",
				Comment: "x", PaymentMethod: "cheque"},
			photo: jpeg(10),
			want:  ErrValidation,
		},
		{
			name: "missing comment",
			in: CreateInput{DocumentNumber: "1", DocumentType: "CT",
				PaymentMethod: MetodoEfectivo},
			want: ErrValidation,
		},
		{
			name: "missing document number",
			in: CreateInput{DocumentType: "CT", Comment: "x",
				PaymentMethod: MetodoEfectivo},
			want: ErrValidation,
		},
		{
			name: "transferencia without photo",
			in:   validInput(),
			want: ErrValidation,
		},
		{
			name: "webpay without photo",
			in: CreateInput{DocumentNumber: "1", DocumentType: "NV",
				Comment: "x", PaymentMethod: MetodoWebpay},
			want: ErrValidation,
		},
		{
			name:  "non-image evidence",
			in:    validInput(),
			photo: &Photo{Data: []byte("%PDF-1.4"), ContentType: "application/pdf", Filename: "proof.pdf"},
			want:  ErrUnsupportedMedia,
		},
		{
			name:  "oversized evidence",
			in:    validInput(),
			photo: jpeg(config.MaxEvidenceBytes + 1),
			want:  ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, "u1", "V01", tt.in, tt.photo)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidatePhoto(t *testing.T) {
	if err := validatePhoto(nil); err != nil {
		t.Errorf("nil photo: %v", err)
	}
	if err := validatePhoto(&Photo{}); err != nil {
		t.Errorf("empty photo: %v", err)
	}
	if err := validatePhoto(jpeg(1024)); err != nil {
		t.Errorf("small jpeg: %v", err)
	}
	if err := validatePhoto(&Photo{Data: []byte{1}, ContentType: "image/png"}); err != nil {
		t.Errorf("png: %v", err)
	}
	if err := validatePhoto(&Photo{Data: []byte{1}, ContentType: "text/html"}); !errors.Is(err, ErrUnsupportedMedia) {
		t.Errorf("html err = %v", err)
	}
	if err := validatePhoto(jpeg(config.MaxEvidenceBytes + 1)); !errors.Is(err, ErrValidation) {
		t.Errorf("oversize err = %v", err)
	}
}

func TestUpdateRejectsInvalidMethod(t *testing.T) {
	s := &Store{}
	_, err := s.Update(context.Background(), "id", "u1", UpdateInput{PaymentMethod: "cheque"}, nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
