package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	appsync "github.com/jhoicas/facturas-api/internal/application/sync"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

var _ appsync.HistorialRepository = (*HistorialRepo)(nil)

// Querier abstrae pool o tx de pgx para los repositorios.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HistorialRepo persiste una fila por intento de sincronización.
//
// Esquema esperado:
//
//	CREATE TABLE sync_historial (
//	    id              UUID PRIMARY KEY,
//	    tipo            TEXT NOT NULL,
//	    inicio          TIMESTAMPTZ NOT NULL,
//	    duracion_ms     BIGINT NOT NULL,
//	    total_facturas  INTEGER NOT NULL,
//	    total_clientes  INTEGER NOT NULL,
//	    exito           BOOLEAN NOT NULL,
//	    error           TEXT NOT NULL DEFAULT ''
//	);
type HistorialRepo struct {
	q Querier
}

// NewHistorialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewHistorialRepository(q Querier) *HistorialRepo {
	return &HistorialRepo{q: q}
}

// Registrar inserta el intento de sincronización.
func (r *HistorialRepo) Registrar(ctx context.Context, registro *entity.RegistroSync) error {
	query := `
		INSERT INTO sync_historial (id, tipo, inicio, duracion_ms, total_facturas, total_clientes, exito, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		registro.ID, string(registro.Tipo), registro.Inicio, registro.DuracionMs,
		registro.TotalFacturas, registro.TotalClientes, registro.Exito, registro.Error,
	)
	if err != nil {
		return fmt.Errorf("insert sync_historial: %w", err)
	}
	return nil
}

// Listar devuelve los intentos más recientes, el último primero.
func (r *HistorialRepo) Listar(ctx context.Context, limite int) ([]*entity.RegistroSync, error) {
	if limite <= 0 {
		limite = 20
	}
	query := `
		SELECT id, tipo, inicio, duracion_ms, total_facturas, total_clientes, exito, error
		FROM sync_historial ORDER BY inicio DESC LIMIT $1`
	rows, err := r.q.Query(ctx, query, limite)
	if err != nil {
		return nil, fmt.Errorf("list sync_historial: %w", err)
	}
	defer rows.Close()

	var lista []*entity.RegistroSync
	for rows.Next() {
		var reg entity.RegistroSync
		var tipo string
		if err := rows.Scan(&reg.ID, &tipo, &reg.Inicio, &reg.DuracionMs,
			&reg.TotalFacturas, &reg.TotalClientes, &reg.Exito, &reg.Error); err != nil {
			return nil, fmt.Errorf("scan sync_historial: %w", err)
		}
		reg.Tipo = entity.TipoDataset(tipo)
		lista = append(lista, &reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows sync_historial: %w", err)
	}
	return lista, nil
}
