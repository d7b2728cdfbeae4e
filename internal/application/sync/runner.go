package sync

import (
	"context"

	"github.com/jhoicas/facturas-api/pkg/logger"
)

// Tarea unidad de trabajo en segundo plano con nombre para trazabilidad.
type Tarea struct {
	Nombre string
	Fn     func(ctx context.Context) error
}

// Runner ejecutor de tareas fire-and-forget (ej. POST /sync). Las tareas se
// encolan y se ejecutan una a la vez en un worker propio; sus errores van a
// un canal que se drena hacia el log, nunca a la respuesta HTTP que las
// originó.
type Runner struct {
	tareas  chan Tarea
	errores chan error
	hecho   chan struct{}
	log     *logger.Logger
}

// NewRunner construye el runner y arranca el worker y el drenador de errores.
// ctx cancela las tareas en vuelo al apagar el proceso.
func NewRunner(ctx context.Context, tamCola int, log *logger.Logger) *Runner {
	r := &Runner{
		tareas:  make(chan Tarea, tamCola),
		errores: make(chan error, tamCola),
		hecho:   make(chan struct{}),
		log:     log,
	}
	go r.trabajar(ctx)
	go r.drenarErrores()
	return r
}

// Encolar agrega una tarea. Devuelve false si la cola está llena o el runner
// ya fue cerrado; el caller decide cómo reportarlo.
func (r *Runner) Encolar(t Tarea) (ok bool) {
	defer func() {
		// Encolar sobre un runner cerrado no debe tumbar el proceso.
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case r.tareas <- t:
		return true
	default:
		r.log.Warn().Str("tarea", t.Nombre).Msg("cola de tareas llena, tarea descartada")
		return false
	}
}

// Cerrar deja de aceptar tareas y espera a que el worker termine la cola.
func (r *Runner) Cerrar() {
	close(r.tareas)
	<-r.hecho
}

func (r *Runner) trabajar(ctx context.Context) {
	defer close(r.hecho)
	defer close(r.errores)
	for t := range r.tareas {
		r.log.Debug().Str("tarea", t.Nombre).Msg("tarea iniciada")
		if err := t.Fn(ctx); err != nil {
			r.errores <- err
		}
	}
}

func (r *Runner) drenarErrores() {
	for err := range r.errores {
		r.log.Error().Err(err).Msg("tarea en segundo plano fallida")
	}
}
