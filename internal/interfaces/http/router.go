package http

import (
	"github.com/gofiber/fiber/v2"

	appsync "github.com/jhoicas/facturas-api/internal/application/sync"
	"github.com/jhoicas/facturas-api/internal/infrastructure/pdf"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orquestador *appsync.Orchestrator
	Runner      *appsync.Runner
	Historial   appsync.HistorialRepository // nil = sin historial
	Reportes    *pdf.ReporteGenerator
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	facturas := api.Group("/facturas")
	handler := NewFacturasHandler(deps.Orquestador, deps.Runner, deps.Historial, deps.Reportes)
	facturas.Get("/pagadas", handler.Pagadas)
	facturas.Get("/pendientes", handler.Pendientes)
	facturas.Get("/cliente/:id", handler.Cliente)
	facturas.Get("/status", handler.Status)
	facturas.Post("/sync", handler.Sync)
	facturas.Get("/sync/historial", handler.Historial)
	facturas.Get("/reporte", handler.Reporte)
}
