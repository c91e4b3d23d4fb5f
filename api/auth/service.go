package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"CierreCaja/internal/logger"
	"CierreCaja/internal/serviceiface"

	"github.com/google/uuid"
)

// UserSession is one logged-in back-office user. Perfil and CodigoVendedor
// drive the role scoping of every ERP query and verification lookup.
type UserSession struct {
	SessionID          string
	UserID             string
	Nombre             string
	Correo             string
	Perfil             string
	CodigoVendedor     string
	PorcentajeComision *float64
	ComisionBase       *float64
	LastLoginTime      string
	ClientIP           string
	IsLoggedIn         bool
}

type AuthService struct {
	db       *sql.DB
	maxUsers int
	users    map[string]*UserSession
	byUserID map[string]*UserSession
	mu       sync.Mutex
	stopCh   chan struct{}
}

func NewAuthService(db *sql.DB, maxUsers int) serviceiface.Service {
	return &AuthService{
		db:       db,
		maxUsers: maxUsers,
		users:    make(map[string]*UserSession),
		byUserID: make(map[string]*UserSession),
		stopCh:   make(chan struct{}),
	}
}

func (a *AuthService) Name() string { return "auth" }

func (a *AuthService) Start() error {
	go a.sessionCleaner()
	return nil
}

func (a *AuthService) Stop() error {
	close(a.stopCh)
	return nil
}

func (a *AuthService) Login(correo, password, clientIP string) (*UserSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, session := range a.users {
		if session.Correo == correo && session.IsLoggedIn {
			session.LastLoginTime = time.Now().Format(time.RFC3339)
			session.ClientIP = clientIP
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("User %s re-logged in, returning existing session", correo))
			}
			return session, nil
		}
	}

	if a.maxUsers > 0 && len(a.users) >= a.maxUsers {
		return nil, errors.New("maximum concurrent users reached")
	}

	var (
		userID, nombre, mail, perfil string
		codigoVendedor               sql.NullString
		porcentajeComision           sql.NullFloat64
		comisionBase                 sql.NullFloat64
		activo                       bool
	)

	query := `
    SELECT id, nombre, correo, perfil, codigo_vendedor, porcentaje_comision, comision_base, activo
    FROM users
    WHERE correo = $1 AND password = crypt($2, password)
    `

	err := a.db.QueryRow(query, correo, password).Scan(
		&userID, &nombre, &mail, &perfil,
		&codigoVendedor, &porcentajeComision, &comisionBase, &activo,
	)
	if err != nil {
		return nil, errors.New("invalid credentials or user not found")
	}
	if !activo {
		return nil, errors.New("user is inactive")
	}

	session := &UserSession{
		SessionID:      uuid.NewString(),
		UserID:         userID,
		Nombre:         nombre,
		Correo:         mail,
		Perfil:         perfil,
		CodigoVendedor: codigoVendedor.String,
		LastLoginTime:  time.Now().Format(time.RFC3339),
		ClientIP:       clientIP,
		IsLoggedIn:     true,
	}
	if porcentajeComision.Valid {
		v := porcentajeComision.Float64
		session.PorcentajeComision = &v
	}
	if comisionBase.Valid {
		v := comisionBase.Float64
		session.ComisionBase = &v
	}

	a.users[session.SessionID] = session
	a.byUserID[userID] = session

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("User logged in: " + correo)
	}

	return session, nil
}

func (a *AuthService) Logout(sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, exists := a.users[sessionID]
	if !exists {
		return errors.New("session not found")
	}
	delete(a.users, sessionID)
	delete(a.byUserID, session.UserID)

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("User logged out: " + session.UserID)
	}

	return nil
}

var globalAuthService *AuthService

// SetGlobalAuthService sets the global AuthService instance
func SetGlobalAuthService(svc *AuthService) {
	globalAuthService = svc
}

// GetActiveSessions returns active sessions from the global AuthService
func GetActiveSessions() []*UserSession {
	if globalAuthService == nil {
		return nil
	}
	return globalAuthService.GetActiveSessions()
}

// SessionForUser resolves the active session for a user id, the way every
// domain handler validates its caller.
func SessionForUser(userID string) (*UserSession, bool) {
	for _, s := range GetActiveSessions() {
		if s.UserID == userID && s.IsLoggedIn {
			return s, true
		}
	}
	return nil, false
}

func (a *AuthService) GetActiveSessions() []*UserSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	sessions := make([]*UserSession, 0, len(a.users))
	for _, s := range a.users {
		sessions = append(sessions, s)
	}
	return sessions
}

const sessionMaxAge = 12 * time.Hour

// sessionCleaner drops sessions whose last login is older than the max age.
func (a *AuthService) sessionCleaner() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			a.expireStaleSessions()
		}
	}
}

func (a *AuthService) expireStaleSessions() {
	a.mu.Lock()
	defer a.mu.Unlock()
	cutoff := time.Now().Add(-sessionMaxAge)
	for id, s := range a.users {
		t, err := time.Parse(time.RFC3339, s.LastLoginTime)
		if err != nil || t.Before(cutoff) {
			delete(a.users, id)
			delete(a.byUserID, s.UserID)
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit("Session expired for user: " + s.UserID)
			}
		}
	}
}
