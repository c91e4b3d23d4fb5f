package verificaciones

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"CierreCaja/api"
	"CierreCaja/internal/config"
	"CierreCaja/internal/filestore"
)

// Payment methods accepted on a verification.
const (
	MetodoEfectivo      = "efectivo"
	MetodoTransferencia = "transferencia"
	MetodoWebpay        = "webpay"
)

// Verification is one payment proof recorded by a salesperson against an
// ERP document. DocumentInfo is a JSON snapshot of the source document at
// verification time.
type Verification struct {
	ID             string    `json:"id"`
	DocumentNumber string    `json:"document_number"`
	DocumentType   string    `json:"document_type"`
	VendorCode     string    `json:"vendor_code"`
	PaymentMethod  string    `json:"payment_method"`
	Comment        string    `json:"comment"`
	PhotoURL       *string   `json:"photo_url"`
	DocumentInfo   string    `json:"document_info"`
	UserID         string    `json:"user_id"`
	UserNombre     string    `json:"user_nombre,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateInput is the payload for a new verification.
type CreateInput struct {
	DocumentNumber string `validate:"required"`
	DocumentType   string `validate:"required"`
	Comment        string `validate:"required"`
	PaymentMethod  string `validate:"required,oneof=efectivo transferencia webpay"`
	DocumentInfo   string
}

// UpdateInput patches an existing verification; zero values leave the field
// untouched.
type UpdateInput struct {
	Comment       string
	PaymentMethod string `validate:"omitempty,oneof=efectivo transferencia webpay"`
	DocumentInfo  string
}

// Photo is an uploaded evidence file.
type Photo struct {
	Data        []byte
	ContentType string
	Filename    string
}

var validate = validator.New()

// validatePhoto enforces the evidence rules: images only, capped size.
func validatePhoto(p *Photo) error {
	if p == nil || len(p.Data) == 0 {
		return nil
	}
	if !strings.HasPrefix(p.ContentType, "image/") {
		return fmt.Errorf("%w: evidence must be an image, got %s", ErrUnsupportedMedia, p.ContentType)
	}
	if len(p.Data) > config.MaxEvidenceBytes {
		return fmt.Errorf("%w: evidence exceeds %d MB", ErrValidation, config.MaxEvidenceBytes/(1024*1024))
	}
	return nil
}

// Store persists verifications and their evidence photos.
type Store struct {
	pool  *pgxpool.Pool
	files *filestore.Store
}

func NewStore(pool *pgxpool.Pool, files *filestore.Store) *Store {
	return &Store{pool: pool, files: files}
}

// Create validates and inserts a verification for the owning salesperson.
// Non-cash methods require photo evidence.
func (s *Store) Create(ctx context.Context, ownerID, vendorCode string, in CreateInput, photo *Photo) (*Verification, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if in.PaymentMethod != MetodoEfectivo && (photo == nil || len(photo.Data) == 0) {
		return nil, fmt.Errorf("%w: evidence photo is required for %s", ErrValidation, in.PaymentMethod)
	}
	if err := validatePhoto(photo); err != nil {
		return nil, err
	}

	var photoURL *string
	if photo != nil && len(photo.Data) > 0 {
		url, err := s.files.Save(photo.Data, photo.Filename)
		if err != nil {
			return nil, err
		}
		photoURL = &url
	}

	v := &Verification{
		ID:             uuid.NewString(),
		DocumentNumber: in.DocumentNumber,
		DocumentType:   in.DocumentType,
		VendorCode:     vendorCode,
		PaymentMethod:  in.PaymentMethod,
		Comment:        in.Comment,
		PhotoURL:       photoURL,
		DocumentInfo:   in.DocumentInfo,
		UserID:         ownerID,
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO payment_verifications
			(id, document_number, document_type, vendor_code, payment_method, comment, photo_url, document_info, user_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now(), now())
		RETURNING created_at, updated_at
	`, v.ID, v.DocumentNumber, v.DocumentType, v.VendorCode, v.PaymentMethod, v.Comment, v.PhotoURL, v.DocumentInfo, v.UserID).
		Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Update patches a verification owned by ownerID. New evidence replaces the
// old file; removal of the prior file is best-effort.
func (s *Store) Update(ctx context.Context, id, ownerID string, in UpdateInput, photo *Photo) (*Verification, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := validatePhoto(photo); err != nil {
		return nil, err
	}

	existing, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	photoURL := existing.PhotoURL
	if photo != nil && len(photo.Data) > 0 {
		url, err := s.files.Save(photo.Data, photo.Filename)
		if err != nil {
			return nil, err
		}
		if existing.PhotoURL != nil {
			if derr := s.files.Delete(*existing.PhotoURL); derr != nil {
				api.LogError("could not remove previous evidence %s: %v", *existing.PhotoURL, derr)
			}
		}
		photoURL = &url
	}

	if in.Comment == "" {
		in.Comment = existing.Comment
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = existing.PaymentMethod
	}
	if in.DocumentInfo == "" {
		in.DocumentInfo = existing.DocumentInfo
	}

	v := existing
	v.Comment = in.Comment
	v.PaymentMethod = in.PaymentMethod
	v.DocumentInfo = in.DocumentInfo
	v.PhotoURL = photoURL

	err = s.pool.QueryRow(ctx, `
		UPDATE payment_verifications
		SET comment = $1, payment_method = $2, document_info = $3, photo_url = $4, updated_at = now()
		WHERE id = $5 AND user_id = $6
		RETURNING updated_at
	`, v.Comment, v.PaymentMethod, v.DocumentInfo, v.PhotoURL, id, ownerID).Scan(&v.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// Delete removes a verification owned by ownerID; the evidence file removal
// is best-effort.
func (s *Store) Delete(ctx context.Context, id, ownerID string) error {
	existing, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if existing.PhotoURL != nil {
		if derr := s.files.Delete(*existing.PhotoURL); derr != nil {
			api.LogError("could not remove evidence %s: %v", *existing.PhotoURL, derr)
		}
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM payment_verifications WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) findOwned(ctx context.Context, id, ownerID string) (*Verification, error) {
	v := &Verification{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, document_number, document_type, vendor_code, payment_method, comment, photo_url, document_info, user_id, created_at, updated_at
		FROM payment_verifications
		WHERE id = $1 AND user_id = $2
	`, id, ownerID).Scan(&v.ID, &v.DocumentNumber, &v.DocumentType, &v.VendorCode, &v.PaymentMethod, &v.Comment, &v.PhotoURL, &v.DocumentInfo, &v.UserID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// ListFilter narrows a listing. OwnerID empty means all owners (privileged
// callers only; handlers enforce that).
type ListFilter struct {
	OwnerID        string
	DocumentNumber string
	DocumentType   string
	CreatedFrom    time.Time
	CreatedTo      time.Time
}

// List returns verifications newest-first. The descending order is what pins
// "most recently created wins" when duplicates exist for one document.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Verification, error) {
	q := `
		SELECT v.id, v.document_number, v.document_type, v.vendor_code, v.payment_method, v.comment, v.photo_url, v.document_info, v.user_id, COALESCE(u.nombre, ''), v.created_at, v.updated_at
		FROM payment_verifications v
		LEFT JOIN users u ON u.id = v.user_id
		WHERE 1=1`
	args := []interface{}{}
	n := 0
	add := func(clause string, val interface{}) {
		n++
		q += fmt.Sprintf(" AND "+clause, n)
		args = append(args, val)
	}
	if f.OwnerID != "" {
		add("v.user_id = $%d", f.OwnerID)
	}
	if f.DocumentNumber != "" {
		add("v.document_number = $%d", f.DocumentNumber)
	}
	if f.DocumentType != "" {
		add("v.document_type = $%d", f.DocumentType)
	}
	if !f.CreatedFrom.IsZero() {
		add("v.created_at >= $%d", f.CreatedFrom)
	}
	if !f.CreatedTo.IsZero() {
		add("v.created_at <= $%d", f.CreatedTo)
	}
	q += " ORDER BY v.created_at DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Verification
	for rows.Next() {
		var v Verification
		if err := rows.Scan(&v.ID, &v.DocumentNumber, &v.DocumentType, &v.VendorCode, &v.PaymentMethod, &v.Comment, &v.PhotoURL, &v.DocumentInfo, &v.UserID, &v.UserNombre, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// FindByDocument returns the most recent verification for one document key,
// or nil when none exists.
func (s *Store) FindByDocument(ctx context.Context, documentNumber, documentType string) (*Verification, error) {
	list, err := s.List(ctx, ListFilter{DocumentNumber: documentNumber, DocumentType: documentType})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}
