package user

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"CierreCaja/api"
	"CierreCaja/api/auth"
	"CierreCaja/api/utils"
)

// Perfiles that a user account may carry.
const (
	PerfilAdministrador = "administrador"
	PerfilVendedor      = "vendedor"
)

type User struct {
	ID                 string   `json:"id"`
	Nombre             string   `json:"nombre"`
	Correo             string   `json:"correo"`
	Rut                string   `json:"rut"`
	Perfil             string   `json:"perfil"`
	Activo             bool     `json:"activo"`
	CodigoVendedor     string   `json:"codigo_vendedor"`
	PorcentajeComision *float64 `json:"porcentaje_comision"`
	ComisionBase       *float64 `json:"comision_base"`
}

func requireAdmin(w http.ResponseWriter, userID string) bool {
	session, ok := auth.SessionForUser(userID)
	if !ok {
		api.RespondWithError(w, http.StatusBadRequest, "Invalid user_id or session")
		return false
	}
	if session.Perfil != PerfilAdministrador {
		api.RespondWithError(w, http.StatusForbidden, "Administrator profile required")
		return false
	}
	return true
}

func validPerfil(p string) bool {
	return p == PerfilAdministrador || p == PerfilVendedor
}

// Handler: Create user
func CreateUser(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID             string   `json:"user_id"`
			Nombre             string   `json:"nombre"`
			Correo             string   `json:"correo"`
			Rut                string   `json:"rut"`
			Password           string   `json:"password"`
			Perfil             string   `json:"perfil"`
			CodigoVendedor     string   `json:"codigo_vendedor"`
			PorcentajeComision *float64 `json:"porcentaje_comision"`
			ComisionBase       *float64 `json:"comision_base"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if !requireAdmin(w, req.UserID) {
			return
		}
		req.Correo = strings.TrimSpace(strings.ToLower(req.Correo))
		if req.Nombre == "" || req.Correo == "" || req.Password == "" {
			api.RespondWithError(w, http.StatusBadRequest, "nombre, correo and password are required")
			return
		}
		if !validPerfil(req.Perfil) {
			api.RespondWithError(w, http.StatusBadRequest, "perfil must be administrador or vendedor")
			return
		}
		if req.Perfil == PerfilVendedor && req.CodigoVendedor == "" {
			api.RespondWithError(w, http.StatusBadRequest, "codigo_vendedor is required for vendedor users")
			return
		}

		var id string
		err := db.QueryRow(`INSERT INTO users (
			nombre,
			correo,
			rut,
			password,
			perfil,
			activo,
			codigo_vendedor,
			porcentaje_comision,
			comision_base
		) VALUES ($1, $2, $3, crypt($4, gen_salt('bf')), $5, TRUE, NULLIF($6, ''), $7, $8) RETURNING id`,
			req.Nombre,
			req.Correo,
			req.Rut,
			req.Password,
			req.Perfil,
			req.CodigoVendedor,
			req.PorcentajeComision,
			req.ComisionBase,
		).Scan(&id)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"user_id": id,
		})
	}
}

// Handler: List users, optionally filtered by perfil or activo. Page and
// limit come from the query string.
func GetUsers(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
			Perfil string `json:"perfil"`
			Activo *bool  `json:"activo"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Please login to continue.")
			return
		}
		if !requireAdmin(w, req.UserID) {
			return
		}
		pagination, err := utils.ExtractPagination(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		where := " WHERE 1=1"
		params := []interface{}{}
		if req.Perfil != "" {
			params = append(params, req.Perfil)
			where += " AND perfil = $" + strconv.Itoa(len(params))
		}
		if req.Activo != nil {
			params = append(params, *req.Activo)
			where += " AND activo = $" + strconv.Itoa(len(params))
		}

		total, err := utils.CountTotal(db, "SELECT COUNT(*) FROM users"+where, params...)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		pagination.SetPaginationStats(total)

		query := `SELECT id, nombre, correo, rut, perfil, activo,
			COALESCE(codigo_vendedor, ''), porcentaje_comision, comision_base
			FROM users` + where + " ORDER BY nombre" +
			" LIMIT $" + strconv.Itoa(len(params)+1) +
			" OFFSET $" + strconv.Itoa(len(params)+2)
		params = append(params, pagination.Limit, pagination.Offset)

		rows, err := db.Query(query, params...)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		users := []User{}
		for rows.Next() {
			var u User
			if err := rows.Scan(&u.ID, &u.Nombre, &u.Correo, &u.Rut, &u.Perfil, &u.Activo,
				&u.CodigoVendedor, &u.PorcentajeComision, &u.ComisionBase); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			users = append(users, u)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"users":      users,
			"pagination": pagination,
		})
	}
}

// Handler: Get single user by id
func GetUserById(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   string `json:"user_id"`
			TargetID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TargetID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if !requireAdmin(w, req.UserID) {
			return
		}
		var u User
		err := db.QueryRow(`SELECT id, nombre, correo, rut, perfil, activo,
			COALESCE(codigo_vendedor, ''), porcentaje_comision, comision_base
			FROM users WHERE id = $1`, req.TargetID).
			Scan(&u.ID, &u.Nombre, &u.Correo, &u.Rut, &u.Perfil, &u.Activo,
				&u.CodigoVendedor, &u.PorcentajeComision, &u.ComisionBase)
		if err == sql.ErrNoRows {
			api.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", "user", u)
	}
}

// Handler: Update user fields; password and commission terms only change
// when the request carries them
func UpdateUser(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID             string   `json:"user_id"`
			TargetID           string   `json:"id"`
			Nombre             *string  `json:"nombre"`
			Correo             *string  `json:"correo"`
			Rut                *string  `json:"rut"`
			Password           *string  `json:"password"`
			Perfil             *string  `json:"perfil"`
			Activo             *bool    `json:"activo"`
			CodigoVendedor     *string  `json:"codigo_vendedor"`
			PorcentajeComision *float64 `json:"porcentaje_comision"`
			ComisionBase       *float64 `json:"comision_base"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TargetID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if !requireAdmin(w, req.UserID) {
			return
		}
		if req.Perfil != nil && !validPerfil(*req.Perfil) {
			api.RespondWithError(w, http.StatusBadRequest, "perfil must be administrador or vendedor")
			return
		}

		sets := []string{}
		params := []interface{}{}
		add := func(column string, value interface{}) {
			params = append(params, value)
			sets = append(sets, column+" = $"+strconv.Itoa(len(params)))
		}
		if req.Nombre != nil {
			add("nombre", *req.Nombre)
		}
		if req.Correo != nil {
			add("correo", strings.TrimSpace(strings.ToLower(*req.Correo)))
		}
		if req.Rut != nil {
			add("rut", *req.Rut)
		}
		if req.Password != nil && *req.Password != "" {
			params = append(params, *req.Password)
			sets = append(sets, "password = crypt($"+strconv.Itoa(len(params))+", gen_salt('bf'))")
		}
		if req.Perfil != nil {
			add("perfil", *req.Perfil)
		}
		if req.Activo != nil {
			add("activo", *req.Activo)
		}
		if req.CodigoVendedor != nil {
			params = append(params, *req.CodigoVendedor)
			sets = append(sets, "codigo_vendedor = NULLIF($"+strconv.Itoa(len(params))+", '')")
		}
		if req.PorcentajeComision != nil {
			add("porcentaje_comision", *req.PorcentajeComision)
		}
		if req.ComisionBase != nil {
			add("comision_base", *req.ComisionBase)
		}
		if len(sets) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, "No fields to update")
			return
		}

		params = append(params, req.TargetID)
		query := "UPDATE users SET " + strings.Join(sets, ", ") +
			" WHERE id = $" + strconv.Itoa(len(params))
		res, err := db.Exec(query, params...)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			api.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

// Handler: Deactivate user. Accounts are never hard-deleted so historical
// verifications keep their owner.
func DeleteUser(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   string `json:"user_id"`
			TargetID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TargetID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if !requireAdmin(w, req.UserID) {
			return
		}
		if req.TargetID == req.UserID {
			api.RespondWithError(w, http.StatusBadRequest, "Cannot deactivate your own account")
			return
		}
		res, err := db.Exec(`UPDATE users SET activo = FALSE WHERE id = $1`, req.TargetID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			api.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

// Handler: Active vendedores with their codes, for filter dropdowns.
// Any logged-in user may call it.
func GetVendors(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Please login to continue.")
			return
		}
		if _, ok := auth.SessionForUser(req.UserID); !ok {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid user_id or session")
			return
		}
		rows, err := db.Query(`SELECT id, nombre, codigo_vendedor FROM users
			WHERE perfil = $1 AND activo = TRUE AND codigo_vendedor IS NOT NULL
			ORDER BY nombre`, PerfilVendedor)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		vendors := []map[string]interface{}{}
		for rows.Next() {
			var id, nombre, codigo string
			if err := rows.Scan(&id, &nombre, &codigo); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			vendors = append(vendors, map[string]interface{}{
				"id":              id,
				"nombre":          nombre,
				"codigo_vendedor": codigo,
			})
		}
		api.RespondWithPayload(w, true, "", "vendors", vendors)
	}
}

