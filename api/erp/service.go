package erp

import (
	"CierreCaja/internal/serviceiface"
)

type ERPService struct {
	config map[string]interface{}
}

func NewERPService(cfg map[string]interface{}) serviceiface.Service {
	return &ERPService{config: cfg}
}

func (s *ERPService) Name() string {
	return "erp"
}

func (s *ERPService) Start() error {
	go StartERPService()
	return nil
}

func (s *ERPService) Stop() error {
	return nil
}
