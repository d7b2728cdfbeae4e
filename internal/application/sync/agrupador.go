package sync

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

// Agrupar reduce una lista plana de facturas a agregados por cliente.
//
// Función pura y determinista: particiona por idcliente (vacío va a la cubeta
// entity.ClienteDesconocido), suma los totales con redondeo a 2 decimales
// (un total no numérico aporta cero), marca cada agregado con estadoTag y
// ordena descendente por número de facturas, desempatando por idcliente
// ascendente. Las facturas de cada agregado conservan el orden de
// descubrimiento.
func Agrupar(facturas []entity.Factura, estadoTag string) []entity.ClienteAgregado {
	porCliente := make(map[string]*entity.ClienteAgregado)
	var orden []string

	for _, f := range facturas {
		id := f.IDCliente
		if id == "" {
			id = entity.ClienteDesconocido
		}
		agregado, ok := porCliente[id]
		if !ok {
			agregado = &entity.ClienteAgregado{
				IDCliente:   id,
				TotalPagado: decimal.Zero,
				Estado:      estadoTag,
			}
			porCliente[id] = agregado
			orden = append(orden, id)
		}
		agregado.Facturas = append(agregado.Facturas, f)
		agregado.NumFacturas++
		agregado.TotalPagado = agregado.TotalPagado.Add(f.TotalDecimal())
	}

	resultado := make([]entity.ClienteAgregado, 0, len(orden))
	for _, id := range orden {
		agregado := porCliente[id]
		agregado.TotalPagado = agregado.TotalPagado.Round(2)
		resultado = append(resultado, *agregado)
	}

	sort.SliceStable(resultado, func(i, j int) bool {
		if resultado[i].NumFacturas != resultado[j].NumFacturas {
			return resultado[i].NumFacturas > resultado[j].NumFacturas
		}
		return resultado[i].IDCliente < resultado[j].IDCliente
	})

	return resultado
}
