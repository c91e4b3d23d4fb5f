package verificaciones

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"CierreCaja/api"
	"CierreCaja/api/auth"
	"CierreCaja/api/erp"
	"CierreCaja/internal/config"
)

func statusForStoreError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUnsupportedMedia):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// sessionFromForm validates the caller of a multipart request.
func sessionFromForm(r *http.Request) (*auth.UserSession, bool) {
	return auth.SessionForUser(r.FormValue("user_id"))
}

// photoFromForm reads the optional evidence upload. The multipart reader is
// capped just above the evidence limit so oversized uploads still reach the
// store's own validation instead of failing opaquely.
func photoFromForm(r *http.Request) (*Photo, error) {
	file, header, err := r.FormFile("photo")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, config.MaxEvidenceBytes+1))
	if err != nil {
		return nil, err
	}
	return &Photo{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, nil
}

// CrearVerificacion handles the multipart create. The vendor code always
// comes from the caller's session, never from the form.
func CrearVerificacion(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(config.MaxEvidenceBytes + 1024*1024); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		session, ok := sessionFromForm(r)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid user_id or session")
			return
		}
		if session.CodigoVendedor == "" {
			api.RespondWithError(w, http.StatusBadRequest, "User has no vendor code assigned")
			return
		}

		photo, err := photoFromForm(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Reading evidence photo: "+err.Error())
			return
		}

		in := CreateInput{
			DocumentNumber: r.FormValue("document_number"),
			DocumentType:   r.FormValue("document_type"),
			Comment:        r.FormValue("comment"),
			PaymentMethod:  r.FormValue("payment_method"),
			DocumentInfo:   r.FormValue("document_info"),
		}
		v, err := store.Create(r.Context(), session.UserID, session.CodigoVendedor, in, photo)
		if err != nil {
			api.RespondWithError(w, statusForStoreError(err), err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", "verification", v)
	}
}

// ActualizarVerificacion patches comment, method, snapshot or evidence on a
// verification owned by the caller.
func ActualizarVerificacion(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(config.MaxEvidenceBytes + 1024*1024); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		session, ok := sessionFromForm(r)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid user_id or session")
			return
		}
		id := r.FormValue("id")
		if id == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Missing verification id")
			return
		}

		photo, err := photoFromForm(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Reading evidence photo: "+err.Error())
			return
		}

		in := UpdateInput{
			Comment:       r.FormValue("comment"),
			PaymentMethod: r.FormValue("payment_method"),
			DocumentInfo:  r.FormValue("document_info"),
		}
		v, err := store.Update(r.Context(), id, session.UserID, in, photo)
		if err != nil {
			api.RespondWithError(w, statusForStoreError(err), err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", "verification", v)
	}
}

// EliminarVerificacion deletes a verification owned by the caller.
func EliminarVerificacion(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
			ID     string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		session, ok := auth.SessionForUser(req.UserID)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid user_id or session")
			return
		}
		if err := store.Delete(r.Context(), req.ID, session.UserID); err != nil {
			api.RespondWithError(w, statusForStoreError(err), err.Error())
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

// ListarVerificaciones lists verifications: a vendedor sees only its own,
// an administrador sees all. Optional document filters narrow the result.
func ListarVerificaciones(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID         string `json:"user_id"`
			DocumentNumber string `json:"document_number"`
			DocumentType   string `json:"document_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		session, ok := auth.SessionForUser(req.UserID)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid user_id or session")
			return
		}

		f := ListFilter{
			DocumentNumber: req.DocumentNumber,
			DocumentType:   req.DocumentType,
		}
		if session.Perfil != erp.PerfilAdministrador {
			f.OwnerID = session.UserID
		}
		list, err := store.List(r.Context(), f)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", "verifications", list)
	}
}

// DetalleVerificacion returns the most recent verification for a document
// key with the raw document snapshot and its breakdown entries passed
// through any-shape for the detail view.
func DetalleVerificacion(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID         string `json:"user_id"`
			DocumentNumber string `json:"document_number"`
			DocumentType   string `json:"document_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		session, ok := auth.SessionForUser(req.UserID)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid user_id or session")
			return
		}

		v, err := store.FindByDocument(r.Context(), req.DocumentNumber, req.DocumentType)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if v == nil {
			api.RespondWithError(w, http.StatusNotFound, "No verification for that document")
			return
		}
		if session.Perfil != erp.PerfilAdministrador && v.UserID != session.UserID {
			api.RespondWithError(w, http.StatusNotFound, "No verification for that document")
			return
		}

		var snapshot map[string]interface{}
		if v.DocumentInfo != "" {
			_ = json.Unmarshal([]byte(v.DocumentInfo), &snapshot)
		}
		var desglose []map[string]interface{}
		if raw, ok := snapshot["Desglose"].(string); ok {
			desglose = erp.RawReferences(raw)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":      true,
			"verification": v,
			"document":     snapshot,
			"desglose":     desglose,
		})
	}
}
