package verificaciones

import (
	"CierreCaja/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type VerificacionesService struct {
	config  map[string]interface{}
	pgxPool *pgxpool.Pool
}

func NewVerificacionesService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &VerificacionesService{config: cfg, pgxPool: pool}
}

func (s *VerificacionesService) Name() string {
	return "verificaciones"
}

func (s *VerificacionesService) Start() error {
	go StartVerificacionesService(s.pgxPool)
	return nil
}

func (s *VerificacionesService) Stop() error {
	return nil
}
