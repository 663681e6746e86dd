package importer

import (
	"fmt"
	"io"

	"github.com/smartdept/budget/internal/expense"
	"github.com/smartdept/budget/internal/importer/procurement"
)

type Service struct {
	procurementParser Parser
}

func NewService() *Service {
	return &Service{
		procurementParser: procurement.NewParser(),
	}
}

func (s *Service) Import(source Source, r io.Reader) ([]expense.CreateParams, error) {
	var parser Parser

	switch source {
	case SourceProcurement:
		parser = s.procurementParser
	default:
		return nil, fmt.Errorf("unknown import source: %s", source)
	}

	return parser.Parse(r)
}
