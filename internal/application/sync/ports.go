package sync

import (
	"context"

	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

// ConsultaFacturas parámetros de una consulta al facturador.
// El facturador puede devolver menos resultados que Limite sin avisar.
type ConsultaFacturas struct {
	Limite    int
	Estado    int    // 0 = pagadas, 1 = pendientes
	IDCliente string // vacío = sin filtro por cliente
}

// ClienteFacturador puerto de salida hacia la API del facturador.
// Una llamada = una consulta; los reintentos son responsabilidad del caller.
type ClienteFacturador interface {
	Consultar(ctx context.Context, consulta ConsultaFacturas) ([]entity.Factura, error)
}

// AlmacenCache puerto de persistencia del caché de agregados y su metadata.
// Cualquier problema de lectura (archivo ausente, contenido corrupto) se
// reporta como domain.ErrNotFound, nunca como error fatal.
type AlmacenCache interface {
	Leer(tipo entity.TipoDataset) (*entity.CacheEntry, error)
	Guardar(tipo entity.TipoDataset, entrada *entity.CacheEntry) error
	LeerMetadata(tipo entity.TipoDataset) (*entity.SyncMetadata, error)
	GuardarMetadata(tipo entity.TipoDataset, md *entity.SyncMetadata) error
}

// HistorialRepository puerto opcional de auditoría: una fila por intento de
// sincronización. Un orquestador sin historial funciona igual.
type HistorialRepository interface {
	Registrar(ctx context.Context, registro *entity.RegistroSync) error
	Listar(ctx context.Context, limite int) ([]*entity.RegistroSync, error)
}
