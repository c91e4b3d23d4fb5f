package jobs

import (
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"CierreCaja/internal/serviceiface"
)

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	snapshotConfig := NewDefaultSnapshotConfig()

	// Override schedule from services.yaml if provided
	if s.config != nil {
		if schedule, ok := s.config["snapshot_schedule"].(string); ok && schedule != "" {
			snapshotConfig.Schedule = schedule
		}
		if tz, ok := s.config["time_zone"].(string); ok && tz != "" {
			snapshotConfig.TimeZone = tz
		}
	}

	err := RunCierreSnapshotScheduler(snapshotConfig, s.db)
	if err != nil {
		return fmt.Errorf("failed to start cierre snapshot scheduler: %v", err)
	}

	log.Println("Cron service started — Cierre Snapshot scheduled")
	return nil
}

func (s *CronService) Stop() error {
	log.Println("Cron service stopped.")
	return nil
}
