package remover

import (
	"bgremover/config"
	"fmt"
	"go.uber.org/zap"
)

type Strategy struct {
	m map[Type]Remover
}

func MustStrategy(cfg *config.Config, logger *zap.Logger) *Strategy {
	return &Strategy{m: map[Type]Remover{
		COLORKEY: MustColorKey(cfg.ColorKeyTolerance, logger),
		REMBG:    MustRembg(cfg.RembgURL, cfg.RembgModel, cfg.RembgTimeout, logger),
	}}
}

func (s *Strategy) Apply(t Type) (Remover, error) {
	r, ok := s.m[t]
	if !ok {
		return nil, fmt.Errorf("remover %q is not registered", t)
	}
	return r, nil
}
