// Package facturador implementa el cliente HTTP contra la API del facturador
// (tercero). Un único endpoint POST con filtros por estado, cliente y límite;
// el facturador puede devolver menos resultados que el límite pedido sin
// avisar, y no ofrece paginación.
package facturador

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	appsync "github.com/jhoicas/facturas-api/internal/application/sync"
	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/pkg/logger"
)

// Verificar en tiempo de compilación que Client implementa el puerto.
var _ appsync.ClienteFacturador = (*Client)(nil)

// estadoExito valor del campo "estado" de la respuesta cuando la consulta fue aceptada.
const estadoExito = "exito"

// Client adaptador del puerto ClienteFacturador sobre la API REST del
// facturador. Usa net/http de la librería estándar; sin reintentos: la
// política de reintento pertenece al caller.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient construye el cliente. timeout aplica por llamada; una llamada
// vencida es un fallo normal de esa llamada, no se reintenta.
func NewClient(baseURL, token string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// ── Estructuras del protocolo del facturador ──────────────────────────────────

type consultaRequest struct {
	Token     string `json:"token"`
	Limit     int    `json:"limit"`
	Estado    int    `json:"estado"`
	IDCliente string `json:"idcliente,omitempty"`
}

type consultaResponse struct {
	Estado   string           `json:"estado"`
	Facturas []entity.Factura `json:"facturas"`
	Mensaje  string           `json:"mensaje"`
	Error    string           `json:"error"`
}

// mensajeUpstream devuelve el texto de error que haya enviado el facturador.
func (r consultaResponse) mensajeUpstream() string {
	if r.Mensaje != "" {
		return r.Mensaje
	}
	return r.Error
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// Consultar ejecuta una consulta contra el facturador y normaliza la
// respuesta a una lista plana de facturas. Cada llamada se registra con sus
// parámetros para trazabilidad.
func (c *Client) Consultar(ctx context.Context, consulta appsync.ConsultaFacturas) ([]entity.Factura, error) {
	traceID := uuid.New().String()
	c.log.Debug().
		Str("trace_id", traceID).
		Int("limit", consulta.Limite).
		Int("estado", consulta.Estado).
		Str("idcliente", consulta.IDCliente).
		Msg("consulta al facturador")

	payload := consultaRequest{
		Token:     c.token,
		Limit:     consulta.Limite,
		Estado:    consulta.Estado,
		IDCliente: consulta.IDCliente,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("facturador: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/facturas", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("facturador: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: timeout o cancelación: %v", domain.ErrUpstream, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstream, resp.StatusCode, resumen(raw))
	}

	var parsed consultaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: respuesta no es JSON válido: %v", domain.ErrUpstream, err)
	}
	if parsed.Estado != estadoExito {
		msg := parsed.mensajeUpstream()
		if msg == "" {
			msg = "estado " + parsed.Estado
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, msg)
	}

	c.log.Debug().
		Str("trace_id", traceID).
		Int("facturas", len(parsed.Facturas)).
		Msg("respuesta del facturador")
	return parsed.Facturas, nil
}

// resumen acota el cuerpo de una respuesta de error para el log.
func resumen(raw []byte) string {
	const max = 200
	if len(raw) > max {
		return string(raw[:max]) + "…"
	}
	return string(raw)
}
