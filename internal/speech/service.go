package speech

import (
	"context"
	"io"
)

type Service struct {
	cfg       Config
	converter Converter
}

func NewService(cfg Config, converter Converter) *Service {
	return &Service{
		cfg:       cfg,
		converter: converter,
	}
}

func (s *Service) Configured() error {
	return s.cfg.Configured()
}

func (s *Service) Convert(ctx context.Context, clip Clip) (io.ReadCloser, error) {
	if err := s.Configured(); err != nil {
		return nil, err
	}
	return s.converter.Convert(ctx, clip)
}
