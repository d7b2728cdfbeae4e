package facturador_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "github.com/jhoicas/facturas-api/internal/application/sync"
	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/infrastructure/facturador"
	"github.com/jhoicas/facturas-api/pkg/logger"
)

func TestConsultar_Exito(t *testing.T) {
	var recibido map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/facturas", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&recibido))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"estado": "exito",
			"facturas": [
				{"id": "f1", "idcliente": "A", "total": "10.00", "fecha": "2026-01-15"},
				{"id": "f2", "idcliente": "B", "total": "20.50", "fecha": "2026-01-20"}
			]
		}`))
	}))
	defer srv.Close()

	cliente := facturador.NewClient(srv.URL, "token-secreto", 5*time.Second, logger.Nop())
	facturas, err := cliente.Consultar(context.Background(), appsync.ConsultaFacturas{
		Limite: 100, Estado: 0, IDCliente: "A",
	})
	require.NoError(t, err)
	require.Len(t, facturas, 2)
	assert.Equal(t, "f1", facturas[0].ID)
	assert.Equal(t, "20.50", facturas[1].Total)

	// El body lleva token y filtros tal como los espera el facturador
	assert.Equal(t, "token-secreto", recibido["token"])
	assert.Equal(t, float64(100), recibido["limit"])
	assert.Equal(t, float64(0), recibido["estado"])
	assert.Equal(t, "A", recibido["idcliente"])
}

// idcliente vacío no viaja en el body (omitempty).
func TestConsultar_SinFiltroDeCliente(t *testing.T) {
	var recibido map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&recibido))
		w.Write([]byte(`{"estado": "exito", "facturas": []}`))
	}))
	defer srv.Close()

	cliente := facturador.NewClient(srv.URL, "t", 5*time.Second, logger.Nop())
	facturas, err := cliente.Consultar(context.Background(), appsync.ConsultaFacturas{Limite: 500, Estado: 1})
	require.NoError(t, err)
	assert.Empty(t, facturas)
	_, presente := recibido["idcliente"]
	assert.False(t, presente)
}

// Un estado distinto de "exito" es un error de upstream anotado con su mensaje.
func TestConsultar_ErrorDeUpstreamConMensaje(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"estado": "error", "mensaje": "token inválido"}`))
	}))
	defer srv.Close()

	cliente := facturador.NewClient(srv.URL, "t", 5*time.Second, logger.Nop())
	_, err := cliente.Consultar(context.Background(), appsync.ConsultaFacturas{Limite: 10, Estado: 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "token inválido")
}

func TestConsultar_HTTPNoOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	cliente := facturador.NewClient(srv.URL, "t", 5*time.Second, logger.Nop())
	_, err := cliente.Consultar(context.Background(), appsync.ConsultaFacturas{Limite: 10, Estado: 0})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

// Una llamada que excede su timeout falla sin reintentos.
func TestConsultar_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"estado": "exito", "facturas": []}`))
	}))
	defer srv.Close()

	cliente := facturador.NewClient(srv.URL, "t", 50*time.Millisecond, logger.Nop())
	_, err := cliente.Consultar(context.Background(), appsync.ConsultaFacturas{Limite: 10, Estado: 0})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
