package sync

import (
	"context"
	"time"

	"github.com/jhoicas/facturas-api/pkg/logger"
)

// Scheduler dispara ForzarSincronizacion a intervalo fijo de reloj. El
// orquestador es quien garantiza que la operación sea segura ante reentradas;
// el scheduler solo es el temporizador.
type Scheduler struct {
	orquestador *Orchestrator
	intervalo   time.Duration
	log         *logger.Logger
}

// NewScheduler construye el scheduler.
func NewScheduler(orquestador *Orchestrator, intervalo time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{orquestador: orquestador, intervalo: intervalo, log: log}
}

// Ejecutar corre el bucle del temporizador hasta que ctx se cancele.
// Pensado para correr en su propia goroutine desde main.
func (s *Scheduler) Ejecutar(ctx context.Context) {
	ticker := time.NewTicker(s.intervalo)
	defer ticker.Stop()

	s.log.Info().Dur("intervalo", s.intervalo).Msg("scheduler de sincronización iniciado")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler de sincronización detenido")
			return
		case <-ticker.C:
			resultados := s.orquestador.ForzarSincronizacion(ctx)
			for tipo, err := range resultados {
				if err != nil {
					s.log.Warn().Str("tipo", string(tipo)).Err(err).Msg("resincronización programada fallida")
				}
			}
		}
	}
}
