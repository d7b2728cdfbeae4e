package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturas-api/internal/application/dto"
	appsync "github.com/jhoicas/facturas-api/internal/application/sync"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/facturas-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/facturas-api/internal/interfaces/http"
	"github.com/jhoicas/facturas-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// clienteFake responde lo mismo a toda consulta global y filtra por cliente.
type clienteFake struct {
	facturas []entity.Factura
	fallo    error
}

func (f *clienteFake) Consultar(_ context.Context, c appsync.ConsultaFacturas) ([]entity.Factura, error) {
	if f.fallo != nil {
		return nil, f.fallo
	}
	if c.IDCliente == "" {
		return f.facturas, nil
	}
	var propias []entity.Factura
	for _, fac := range f.facturas {
		if fac.IDCliente == c.IDCliente {
			propias = append(propias, fac)
		}
	}
	return propias, nil
}

func facturasDePrueba() []entity.Factura {
	return []entity.Factura{
		{ID: "f1", IDCliente: "García", Total: "100.00", Fecha: "2026-01-10"},
		{ID: "f2", IDCliente: "García", Total: "50.00", Fecha: "2026-01-15"},
		{ID: "f3", IDCliente: "lopez", Total: "25.00", Fecha: "2026-01-20"},
	}
}

// buildTestApp arma una app Fiber con el router completo y el orquestador
// cableado contra el cliente fake y un caché en directorio temporal.
func buildTestApp(t *testing.T, cliente appsync.ClienteFacturador) (*fiber.App, *appsync.Runner) {
	t.Helper()
	almacen, err := cache.NewFileStore(t.TempDir())
	require.NoError(t, err)

	log := logger.Nop()
	crawler := appsync.NewCrawler(cliente, 0, log)
	orquestador := appsync.NewOrchestrator(crawler, almacen, nil, 30*time.Minute, log)
	runner := appsync.NewRunner(context.Background(), 2, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Orquestador: orquestador,
		Runner:      runner,
		Historial:   nil,
		Reportes:    infrapdf.NewReporteGenerator(),
	})
	return app, runner
}

func doGet(t *testing.T, app *fiber.App, url string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestPagadas_DevuelvePaginaConMetadata(t *testing.T) {
	app, runner := buildTestApp(t, &clienteFake{facturas: facturasDePrueba()})
	defer runner.Cerrar()

	resp := doGet(t, app, "/api/facturas/pagadas?page=1&limit=10")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.FacturasPaginadasResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "García", body.Data[0].IDCliente, "García tiene más facturas y va primero")
	assert.Equal(t, 2, body.Data[0].NumFacturas)
	assert.Equal(t, 2, body.Total)
	require.NotNil(t, body.Metadata)
	assert.True(t, body.Metadata.Exito)
	assert.Equal(t, 3, body.Metadata.TotalFacturas)
}

// La búsqueda es insensible a tildes y mayúsculas.
func TestPagadas_FiltroSearchNormalizado(t *testing.T) {
	app, runner := buildTestApp(t, &clienteFake{facturas: facturasDePrueba()})
	defer runner.Cerrar()

	resp := doGet(t, app, "/api/facturas/pagadas?search=garcia")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.FacturasPaginadasResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "García", body.Data[0].IDCliente)
	assert.Equal(t, 1, body.Total)
}

func TestPagadas_Paginacion(t *testing.T) {
	app, runner := buildTestApp(t, &clienteFake{facturas: facturasDePrueba()})
	defer runner.Cerrar()

	resp := doGet(t, app, "/api/facturas/pagadas?page=2&limit=1")
	defer resp.Body.Close()

	var body dto.FacturasPaginadasResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 2, body.TotalPages)
	assert.Equal(t, "lopez", body.Data[0].IDCliente)
}

func TestCliente_Encontrado(t *testing.T) {
	app, runner := buildTestApp(t, &clienteFake{facturas: facturasDePrueba()})
	defer runner.Cerrar()

	resp := doGet(t, app, "/api/facturas/cliente/lopez?tipo=pagadas")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var agregado entity.ClienteAgregado
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&agregado))
	assert.Equal(t, "lopez", agregado.IDCliente)
	assert.Equal(t, 1, agregado.NumFacturas)
}

func TestCliente_NoEncontradoEs404(t *testing.T) {
	app, runner := buildTestApp(t, &clienteFake{facturas: facturasDePrueba()})
	defer runner.Cerrar()

	resp := doGet(t, app, "/api/facturas/cliente/desconocido?tipo=pagadas")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCliente_TipoInvalidoEs400(t *testing.T) {
	app, runner := buildTestApp(t, &clienteFake{facturas: facturasDePrueba()})
	defer runner.Cerrar()

	resp := doGet(t, app, "/api/facturas/cliente/X?tipo=otras")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Sin caché y con el facturador caído, el caller recibe el fallo.
func TestPendientes_SinCacheNiUpstreamEs503(t *testing.T) {
	app, runner := buildTestApp(t, &clienteFake{fallo: errors.New("facturador caído")})
	defer runner.Cerrar()

	resp := doGet(t, app, "/api/facturas/pendientes")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStatus_ReportaAmbosTipos(t *testing.T) {
	app, runner := buildTestApp(t, &clienteFake{facturas: facturasDePrueba()})
	defer runner.Cerrar()

	// Sincroniza solo pagadas; pendientes queda sin sincronizar
	resp := doGet(t, app, "/api/facturas/pagadas")
	resp.Body.Close()

	resp = doGet(t, app, "/api/facturas/status")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var estado appsync.EstadoSync
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&estado))
	require.NotNil(t, estado.Pagadas)
	assert.True(t, estado.Pagadas.Exito)
	assert.Nil(t, estado.Pendientes, "pendientes nunca se sincronizó")
}

func TestSync_RespondeAcceptedDeInmediato(t *testing.T) {
	app, runner := buildTestApp(t, &clienteFake{facturas: facturasDePrueba()})
	defer runner.Cerrar()

	req := httptest.NewRequest(http.MethodPost, "/api/facturas/sync", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestHistorial_SinBaseDeDatosEs503(t *testing.T) {
	app, runner := buildTestApp(t, &clienteFake{facturas: facturasDePrueba()})
	defer runner.Cerrar()

	resp := doGet(t, app, "/api/facturas/sync/historial")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestReporte_DevuelvePDF(t *testing.T) {
	app, runner := buildTestApp(t, &clienteFake{facturas: facturasDePrueba()})
	defer runner.Cerrar()

	resp := doGet(t, app, "/api/facturas/reporte?tipo=pagadas")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}
