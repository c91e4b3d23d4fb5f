package config

import "os"

const (
	DefaultERPBaseURL   = "https://clientes.erpyme.cl"
	ERPLoginPath        = "/login/login2post"
	ERPDocumentListPath = "/Documentos/get_listado_documentos"
	ERPSessionCookie    = "ci_session"

	// Absolute margin accepted between a document's net amount and the sum
	// of its breakdown references, in currency units.
	BreakdownTolerance = 5

	// Evidence photo limit for payment verifications.
	MaxEvidenceBytes = 5 * 1024 * 1024

	DefaultUploadsDir = "./uploads/payment-verifications"

	// Daily cash-closing snapshot schedule.
	CierreSnapshotSchedule = "0 22 * * *"
	DefaultTimeZone        = "America/Santiago"
)

// ERPBaseURL returns the upstream ERP base URL, honoring the env override.
func ERPBaseURL() string {
	if v := os.Getenv("ERP_BASE_URL"); v != "" {
		return v
	}
	return DefaultERPBaseURL
}

// ERPCredentials are injected from the environment, never embedded in code.
type ERPCredentials struct {
	RutEmpresa string
	Usuario    string
	Password   string
}

func ERPCredentialsFromEnv() ERPCredentials {
	return ERPCredentials{
		RutEmpresa: os.Getenv("ERP_RUT_EMPRESA"),
		Usuario:    os.Getenv("ERP_USUARIO"),
		Password:   os.Getenv("ERP_PASSWORD"),
	}
}

func UploadsDir() string {
	if v := os.Getenv("UPLOADS_DIR"); v != "" {
		return v
	}
	return DefaultUploadsDir
}
