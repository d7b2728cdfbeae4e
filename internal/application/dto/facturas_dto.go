package dto

import (
	"time"

	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

// FacturasPaginadasResponse página de agregados por cliente para
// GET /api/facturas/pagadas y /api/facturas/pendientes.
type FacturasPaginadasResponse struct {
	Data       []entity.ClienteAgregado `json:"data"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
	Total      int                      `json:"total"`
	TotalPages int                      `json:"totalPages"`
	Metadata   *entity.SyncMetadata     `json:"metadata,omitempty"`
}

// Paginar aplica page/limit (page desde 1) sobre la lista ya filtrada.
func Paginar(agregados []entity.ClienteAgregado, page, limit int) FacturasPaginadasResponse {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	total := len(agregados)
	totalPages := (total + limit - 1) / limit

	inicio := (page - 1) * limit
	if inicio > total {
		inicio = total
	}
	fin := inicio + limit
	if fin > total {
		fin = total
	}

	return FacturasPaginadasResponse{
		Data:       agregados[inicio:fin],
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// RegistroSyncResponse fila del historial en GET /api/facturas/sync/historial.
type RegistroSyncResponse struct {
	ID            string    `json:"id"`
	Tipo          string    `json:"tipo"`
	Inicio        time.Time `json:"inicio"`
	DuracionMs    int64     `json:"duracionMs"`
	TotalFacturas int       `json:"totalFacturas"`
	TotalClientes int       `json:"totalClientes"`
	Exito         bool      `json:"exito"`
	Error         string    `json:"error,omitempty"`
}

// DesdeRegistro mapea la entidad del historial a su respuesta HTTP.
func DesdeRegistro(reg *entity.RegistroSync) RegistroSyncResponse {
	return RegistroSyncResponse{
		ID:            reg.ID,
		Tipo:          string(reg.Tipo),
		Inicio:        reg.Inicio,
		DuracionMs:    reg.DuracionMs,
		TotalFacturas: reg.TotalFacturas,
		TotalClientes: reg.TotalClientes,
		Exito:         reg.Exito,
		Error:         reg.Error,
	}
}
