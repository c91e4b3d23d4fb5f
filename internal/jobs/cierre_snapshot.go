package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"CierreCaja/api/erp"
	"CierreCaja/api/verificaciones"
	"CierreCaja/internal/config"
	"CierreCaja/internal/filestore"
	"CierreCaja/internal/logger"
)

type SnapshotConfig struct {
	Schedule string
	TimeZone string
}

func NewDefaultSnapshotConfig() *SnapshotConfig {
	return &SnapshotConfig{
		Schedule: config.CierreSnapshotSchedule,
		TimeZone: config.DefaultTimeZone,
	}
}

// TakeCierreSnapshot builds the day's consolidation with administrator scope
// and upserts one row per day, so a rerun replaces the earlier snapshot.
func TakeCierreSnapshot(ctx context.Context, db *pgxpool.Pool, client *erp.Client, day time.Time) error {
	store := verificaciones.NewStore(db, filestore.New(config.UploadsDir()))
	role := erp.RoleContext{Perfil: erp.PerfilAdministrador}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.Add(24*time.Hour - time.Nanosecond)

	report, err := verificaciones.BuildConsolidation(ctx, store, client, role, from, to)
	if err != nil {
		return fmt.Errorf("build consolidation: %w", err)
	}

	totals, err := json.Marshal(report.TotalsByMethod)
	if err != nil {
		return fmt.Errorf("encode method totals: %w", err)
	}

	_, err = db.Exec(ctx, `
		INSERT INTO cierre_snapshots (
			snapshot_date, total_documents, documents_with_payment,
			documents_without_payment, verification_percentage, totals_by_method
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (snapshot_date) DO UPDATE SET
			total_documents = EXCLUDED.total_documents,
			documents_with_payment = EXCLUDED.documents_with_payment,
			documents_without_payment = EXCLUDED.documents_without_payment,
			verification_percentage = EXCLUDED.verification_percentage,
			totals_by_method = EXCLUDED.totals_by_method,
			created_at = now()`,
		from, report.Summary.TotalDocuments, report.Summary.DocumentsWithPayment,
		report.Summary.DocumentsWithoutPayment, report.Summary.VerificationPercentage,
		totals)
	if err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

func RunCierreSnapshotScheduler(cfg *SnapshotConfig, db *pgxpool.Pool) error {
	if cfg.Schedule == "" {
		cfg.Schedule = config.CierreSnapshotSchedule
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	client := erp.NewClient(config.ERPBaseURL(), 60*time.Second)

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := TakeCierreSnapshot(ctx, db, client, time.Now().In(loc)); err != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("Cierre snapshot failed: %v", err))
			return
		}
		logger.GlobalLogger.LogAudit("Cierre snapshot stored")
	})
	if err != nil {
		return fmt.Errorf("unable to schedule cierre snapshot: %v", err)
	}

	c.Start()
	logger.GlobalLogger.LogAudit("Cierre snapshot job scheduled for " + cfg.Schedule + " (" + cfg.TimeZone + ")")
	return nil
}
