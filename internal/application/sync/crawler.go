package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/pkg/logger"
)

// Límites por defecto de las tres fases del rastreo.
const (
	limiteSemillaDefault    = 500
	limitePorClienteDefault = 1000
)

// limitesGradualesDefault techos crecientes de la fase 3. La secuencia se
// recorre en orden; ver Rastrear para las condiciones de corte.
var limitesGradualesDefault = []int{1000, 2000, 5000, 10000}

// Crawler reconstruye el dataset completo de un estado de factura contra un
// facturador que trunca resultados en silencio y no ofrece paginación real.
//
// Tres fases:
//  1. Semilla: una consulta amplia sin filtro de cliente; de ella salen los
//     ids de cliente candidatos. Si falla, falla el rastreo entero.
//  2. Por cliente: una consulta con límite alto por cada cliente descubierto,
//     con una pausa fija entre llamadas; el volumen de un solo cliente cabe
//     en una llamada. Un cliente que falla se registra y se omite.
//  3. Límites graduales: la consulta amplia se repite con techos crecientes.
//     Cero facturas nuevas en un techo corta la fase; un error en un techo
//     también la corta sin probar techos mayores.
//
// El resultado es la unión deduplicada por id de factura de las tres fases.
type Crawler struct {
	cliente ClienteFacturador
	log     *logger.Logger

	delayCliente     time.Duration
	limiteSemilla    int
	limitePorCliente int
	limitesGraduales []int
}

// NewCrawler construye el rastreador. delayCliente es la pausa entre
// consultas por cliente de la fase 2.
func NewCrawler(cliente ClienteFacturador, delayCliente time.Duration, log *logger.Logger) *Crawler {
	return &Crawler{
		cliente:          cliente,
		log:              log,
		delayCliente:     delayCliente,
		limiteSemilla:    limiteSemillaDefault,
		limitePorCliente: limitePorClienteDefault,
		limitesGraduales: limitesGradualesDefault,
	}
}

// Rastrear ejecuta las tres fases para un dataset y devuelve la unión
// deduplicada. Falla únicamente si la fase semilla no produce nada usable.
func (c *Crawler) Rastrear(ctx context.Context, tipo entity.TipoDataset) ([]entity.Factura, error) {
	estado := tipo.EstadoUpstream()

	// Fase 1: semilla
	semilla, err := c.cliente.Consultar(ctx, ConsultaFacturas{Limite: c.limiteSemilla, Estado: estado})
	if err != nil {
		return nil, fmt.Errorf("%w: fase semilla: %v", domain.ErrSemillaFallida, err)
	}
	if len(semilla) == 0 {
		return nil, fmt.Errorf("%w: la consulta semilla no devolvió facturas", domain.ErrSemillaFallida)
	}

	vistas := make(map[string]struct{}, len(semilla))
	var acumuladas []entity.Factura
	acumuladas = agregarSinDuplicados(acumuladas, semilla, vistas)

	clientes := clientesDistintos(semilla)
	c.log.Info().
		Str("tipo", string(tipo)).
		Int("semilla", len(acumuladas)).
		Int("clientes", len(clientes)).
		Msg("fase semilla completada")

	// Fase 2: una consulta por cliente descubierto
	for i, idCliente := range clientes {
		if i > 0 && c.delayCliente > 0 {
			select {
			case <-time.After(c.delayCliente):
			case <-ctx.Done():
				return nil, fmt.Errorf("rastreo cancelado: %w", ctx.Err())
			}
		}
		facturas, err := c.cliente.Consultar(ctx, ConsultaFacturas{
			Limite:    c.limitePorCliente,
			Estado:    estado,
			IDCliente: idCliente,
		})
		if err != nil {
			// Un cliente que falla no anula el rastreo.
			c.log.Warn().
				Str("tipo", string(tipo)).
				Str("idcliente", idCliente).
				Err(err).
				Msg("consulta por cliente fallida, se omite")
			continue
		}
		acumuladas = agregarSinDuplicados(acumuladas, facturas, vistas)
	}

	// Fase 3: ampliación gradual del techo de la consulta global
	for _, limite := range c.limitesGraduales {
		facturas, err := c.cliente.Consultar(ctx, ConsultaFacturas{Limite: limite, Estado: estado})
		if err != nil {
			// Un techo que falla invalida también los techos mayores.
			c.log.Warn().
				Str("tipo", string(tipo)).
				Int("limite", limite).
				Err(err).
				Msg("consulta gradual fallida, fase terminada")
			break
		}
		antes := len(acumuladas)
		acumuladas = agregarSinDuplicados(acumuladas, facturas, vistas)
		if len(acumuladas) == antes {
			// El facturador no revela más datos a techos mayores.
			break
		}
	}

	c.log.Info().
		Str("tipo", string(tipo)).
		Int("total", len(acumuladas)).
		Msg("rastreo completado")
	return acumuladas, nil
}

// agregarSinDuplicados añade a destino las facturas cuyo id no se haya visto,
// conservando el orden de descubrimiento.
func agregarSinDuplicados(destino, nuevas []entity.Factura, vistas map[string]struct{}) []entity.Factura {
	for _, f := range nuevas {
		if f.ID == "" {
			continue
		}
		if _, ok := vistas[f.ID]; ok {
			continue
		}
		vistas[f.ID] = struct{}{}
		destino = append(destino, f)
	}
	return destino
}

// clientesDistintos extrae los ids de cliente únicos y no vacíos en orden de
// aparición. Las facturas con idcliente vacío solo entran al dataset por las
// consultas globales; no hay consulta por cliente que pueda alcanzarlas.
func clientesDistintos(facturas []entity.Factura) []string {
	vistos := make(map[string]struct{})
	var ids []string
	for _, f := range facturas {
		if f.IDCliente == "" {
			continue
		}
		if _, ok := vistos[f.IDCliente]; ok {
			continue
		}
		vistos[f.IDCliente] = struct{}{}
		ids = append(ids, f.IDCliente)
	}
	return ids
}
