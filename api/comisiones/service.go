package comisiones

import (
	"CierreCaja/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ComisionesService struct {
	config  map[string]interface{}
	pgxPool *pgxpool.Pool
}

func NewComisionesService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &ComisionesService{config: cfg, pgxPool: pool}
}

func (s *ComisionesService) Name() string {
	return "comisiones"
}

func (s *ComisionesService) Start() error {
	go StartComisionesService(s.pgxPool)
	return nil
}

func (s *ComisionesService) Stop() error {
	return nil
}
