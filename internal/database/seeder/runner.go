package seeder

import (
	"context"
	"fmt"

	"jobmatch/internal/logger"

	"go.uber.org/zap"
)

type Runner struct {
	Seeders []Seeder
	Logger  *zap.Logger
}

func (r Runner) Run(ctx context.Context, jobs JobCreator) error {
	if jobs == nil {
		return fmt.Errorf("nil job store")
	}
	log := logger.Named(r.Logger, "seeder")
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		n, err := s.Run(ctx, jobs)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.Info("seeded", zap.String("seeder", s.Name()), zap.Int("created", n))
	}
	return nil
}
