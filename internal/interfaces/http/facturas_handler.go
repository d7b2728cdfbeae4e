package http

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturas-api/internal/application/dto"
	appsync "github.com/jhoicas/facturas-api/internal/application/sync"
	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/facturas-api/pkg/normalizar"
)

// FacturasHandler maneja las peticiones HTTP del caché de facturas.
type FacturasHandler struct {
	orquestador *appsync.Orchestrator
	runner      *appsync.Runner
	historial   appsync.HistorialRepository // puede ser nil
	reportes    *pdf.ReporteGenerator
}

// NewFacturasHandler construye el handler. historial puede ser nil cuando el
// servicio corre sin base de datos.
func NewFacturasHandler(orquestador *appsync.Orchestrator, runner *appsync.Runner, historial appsync.HistorialRepository, reportes *pdf.ReporteGenerator) *FacturasHandler {
	return &FacturasHandler{
		orquestador: orquestador,
		runner:      runner,
		historial:   historial,
		reportes:    reportes,
	}
}

// Pagadas GET /api/facturas/pagadas?page&limit&search
func (h *FacturasHandler) Pagadas(c *fiber.Ctx) error {
	return h.listar(c, entity.TipoPagadas)
}

// Pendientes GET /api/facturas/pendientes?page&limit&search
func (h *FacturasHandler) Pendientes(c *fiber.Ctx) error {
	return h.listar(c, entity.TipoPendientes)
}

func (h *FacturasHandler) listar(c *fiber.Ctx, tipo entity.TipoDataset) error {
	agregados, err := h.orquestador.Obtener(c.Context(), tipo)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "SYNC_FALLIDA", Message: err.Error(),
		})
	}

	if search := c.Query("search"); search != "" {
		filtrados := make([]entity.ClienteAgregado, 0, len(agregados))
		for _, agregado := range agregados {
			if normalizar.Contiene(agregado.IDCliente, search) {
				filtrados = append(filtrados, agregado)
			}
		}
		agregados = filtrados
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	respuesta := dto.Paginar(agregados, page, limit)
	respuesta.Metadata = h.metadataDe(tipo)
	return c.JSON(respuesta)
}

// Cliente GET /api/facturas/cliente/:id?tipo=pagadas|pendientes
func (h *FacturasHandler) Cliente(c *fiber.Ctx) error {
	tipo := entity.TipoDataset(c.Query("tipo", string(entity.TipoPagadas)))
	if !tipo.Valido() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "TIPO_INVALIDO", Message: "tipo debe ser pagadas o pendientes",
		})
	}
	agregado, err := h.orquestador.ObtenerCliente(c.Context(), tipo, c.Params("id"))
	if err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Code: "NO_ENCONTRADO", Message: "cliente sin facturas en el dataset solicitado",
			})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "SYNC_FALLIDA", Message: err.Error(),
		})
	}
	return c.JSON(agregado)
}

// Status GET /api/facturas/status
func (h *FacturasHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.orquestador.Estado())
}

// Sync POST /api/facturas/sync
// Dispara la resincronización completa en segundo plano y responde de
// inmediato; el resultado se consulta después vía /status o el historial.
func (h *FacturasHandler) Sync(c *fiber.Ctx) error {
	encolada := h.runner.Encolar(appsync.Tarea{
		Nombre: "sincronizacion-forzada",
		Fn: func(ctx context.Context) error {
			resultados := h.orquestador.ForzarSincronizacion(ctx)
			for _, err := range resultados {
				if err != nil {
					return err
				}
			}
			return nil
		},
	})
	if !encolada {
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
			Code: "SYNC_EN_COLA", Message: "ya hay una sincronización encolada",
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.AckResponse{Mensaje: "sincronización iniciada"})
}

// Historial GET /api/facturas/sync/historial?limit=
func (h *FacturasHandler) Historial(c *fiber.Ctx) error {
	if h.historial == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "SIN_HISTORIAL", Message: "historial no disponible: DATABASE_URL no configurado",
		})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	registros, err := h.historial.Listar(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error(),
		})
	}
	out := make([]dto.RegistroSyncResponse, 0, len(registros))
	for _, reg := range registros {
		out = append(out, dto.DesdeRegistro(reg))
	}
	return c.JSON(out)
}

// Reporte GET /api/facturas/reporte?tipo=pagadas|pendientes
func (h *FacturasHandler) Reporte(c *fiber.Ctx) error {
	tipo := entity.TipoDataset(c.Query("tipo", string(entity.TipoPagadas)))
	if !tipo.Valido() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "TIPO_INVALIDO", Message: "tipo debe ser pagadas o pendientes",
		})
	}
	agregados, err := h.orquestador.Obtener(c.Context(), tipo)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "SYNC_FALLIDA", Message: err.Error(),
		})
	}
	md := h.metadataDe(tipo)
	if md == nil {
		md = &entity.SyncMetadata{}
	}
	contenido, err := h.reportes.GenerarResumen(tipo, md, agregados)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error(),
		})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="resumen_`+string(tipo)+`.pdf"`)
	return c.Send(contenido)
}

func (h *FacturasHandler) metadataDe(tipo entity.TipoDataset) *entity.SyncMetadata {
	estado := h.orquestador.Estado()
	if tipo == entity.TipoPagadas {
		return estado.Pagadas
	}
	return estado.Pendientes
}
