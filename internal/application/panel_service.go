package application

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/domain/repository"
	"github.com/sgexamenes/examenes-api/pkg/helpers"
)

const (
	clavePanelResumen = "panel:resumen"
	ttlPanel          = 2 * time.Minute
)

// PanelService builds dashboard views over attempts. The exam summary is an
// aggregate query, cached briefly in Redis.
type PanelService struct {
	Intentos repository.IntentoRepository
	Redis    *redis.Client
	Logger   *logrus.Logger
}

func NewPanelService(intentos repository.IntentoRepository, rdb *redis.Client, logger *logrus.Logger) *PanelService {
	return &PanelService{Intentos: intentos, Redis: rdb, Logger: logger}
}

// Resumen returns per-exam attempt totals and pass rates.
func (s *PanelService) Resumen(ctx context.Context) ([]entity.ResumenExamen, error) {
	if s.Redis != nil {
		var cached []entity.ResumenExamen
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, clavePanelResumen, &cached); err == nil && ok {
			return cached, nil
		}
	}

	resumen, err := s.Intentos.ResumenPorExamen(ctx)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, clavePanelResumen, resumen, ttlPanel); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("no se pudo cachear el resumen del panel")
		}
	}
	return resumen, nil
}

// IntentosRecientes returns the latest attempts across all exams.
func (s *PanelService) IntentosRecientes(ctx context.Context, limit int) ([]entity.Intento, error) {
	return s.Intentos.Recientes(ctx, limit)
}

// IntentosDeExamen returns every attempt of one exam.
func (s *PanelService) IntentosDeExamen(ctx context.Context, idExamen string) ([]entity.Intento, error) {
	return s.Intentos.ListByExamen(ctx, idExamen)
}
