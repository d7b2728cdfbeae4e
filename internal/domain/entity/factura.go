package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoDataset identifica una de las dos particiones independientes de facturas.
type TipoDataset string

const (
	// TipoPagadas facturas ya pagadas (estado 0 en el facturador).
	TipoPagadas TipoDataset = "pagadas"
	// TipoPendientes facturas pendientes de pago (estado 1 en el facturador).
	TipoPendientes TipoDataset = "pendientes"
)

// Estados con los que se marca cada agregado según su dataset.
const (
	EstadoPagado    = "PAGADO"
	EstadoPendiente = "PENDIENTE"
)

// ClienteDesconocido cubeta centinela para facturas sin idcliente.
const ClienteDesconocido = "SIN_CLIENTE"

// Tipos devuelve los dos datasets en orden estable.
func Tipos() []TipoDataset {
	return []TipoDataset{TipoPagadas, TipoPendientes}
}

// Valido indica si t es uno de los dos datasets conocidos.
func (t TipoDataset) Valido() bool {
	return t == TipoPagadas || t == TipoPendientes
}

// EstadoUpstream devuelve el código de estado que espera el facturador:
// 0 = pagada, 1 = pendiente.
func (t TipoDataset) EstadoUpstream() int {
	if t == TipoPagadas {
		return 0
	}
	return 1
}

// EstadoTag devuelve la etiqueta con la que se marcan los agregados del dataset.
func (t TipoDataset) EstadoTag() string {
	if t == TipoPagadas {
		return EstadoPagado
	}
	return EstadoPendiente
}

// Factura registro inmutable tal como lo entrega el facturador.
// Los importes llegan como string decimal; se parsean bajo demanda.
// El id es la clave de deduplicación dentro de un rastreo.
type Factura struct {
	ID               string `json:"id"`
	IDCliente        string `json:"idcliente"`
	Fecha            string `json:"fecha"`
	FechaVencimiento string `json:"fechavencimiento,omitempty"`
	Total            string `json:"total"`
	EstadoPago       string `json:"estadopago,omitempty"`
	FechaPago        string `json:"fechapago,omitempty"`
	FormaPago        string `json:"formapago,omitempty"`
	Subtotal         string `json:"subtotal,omitempty"`
	IVA              string `json:"iva,omitempty"`
	Retencion        string `json:"retencion,omitempty"`
}

// TotalDecimal parsea el total de la factura. Un total no numérico
// contribuye cero, nunca rechaza la factura.
func (f Factura) TotalDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(f.Total)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ClienteAgregado vista agrupada de las facturas de un cliente dentro de un
// dataset. Se reconstruye completo en cada sincronización; las facturas
// conservan el orden de descubrimiento.
type ClienteAgregado struct {
	IDCliente   string          `json:"idcliente"`
	Facturas    []Factura       `json:"facturas"`
	NumFacturas int             `json:"numFacturas"`
	TotalPagado decimal.Decimal `json:"totalPagado"`
	Estado      string          `json:"estado"`
}

// SyncMetadata resultado del último intento de sincronización de un dataset.
// Se sobreescribe al final de cada intento, exitoso o no.
type SyncMetadata struct {
	UltimaSync    time.Time `json:"ultimaSync"`
	TotalFacturas int       `json:"totalFacturas"`
	TotalClientes int       `json:"totalClientes"`
	DuracionMs    int64     `json:"duracionMs"`
	Exito         bool      `json:"exito"`
	Error         string    `json:"error,omitempty"`
}

// CacheEntry pareja atómica de agregados y metadata que se persiste y se lee
// como un todo: nunca se observa la data de una sincronización con la
// metadata de otra.
type CacheEntry struct {
	Data     []ClienteAgregado `json:"data"`
	Metadata SyncMetadata      `json:"metadata"`
}

// RegistroSync fila del historial de sincronizaciones (una por intento).
type RegistroSync struct {
	ID            string
	Tipo          TipoDataset
	Inicio        time.Time
	DuracionMs    int64
	TotalFacturas int
	TotalClientes int
	Exito         bool
	Error         string
}
