package sync_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "github.com/jhoicas/facturas-api/internal/application/sync"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

func factura(id, idCliente, total string) entity.Factura {
	return entity.Factura{ID: id, IDCliente: idCliente, Total: total}
}

// Las facturas se particionan por cliente y el orden interno es el de descubrimiento.
func TestAgrupar_ParticionaPorCliente(t *testing.T) {
	facturas := []entity.Factura{
		factura("f1", "A", "100.00"),
		factura("f2", "B", "50.00"),
		factura("f3", "A", "25.50"),
	}

	agregados := appsync.Agrupar(facturas, entity.EstadoPagado)
	require.Len(t, agregados, 2)

	// A tiene 2 facturas, va primero
	assert.Equal(t, "A", agregados[0].IDCliente)
	assert.Equal(t, 2, agregados[0].NumFacturas)
	assert.Equal(t, "f1", agregados[0].Facturas[0].ID, "debe conservar el orden de descubrimiento")
	assert.Equal(t, "f3", agregados[0].Facturas[1].ID)
	assert.Equal(t, entity.EstadoPagado, agregados[0].Estado)

	assert.Equal(t, "B", agregados[1].IDCliente)
	assert.Equal(t, 1, agregados[1].NumFacturas)
}

// totalPagado = suma de totales redondeada a 2 decimales; un total no numérico aporta cero.
func TestAgrupar_SumaConTotalesMalformados(t *testing.T) {
	facturas := []entity.Factura{
		factura("f1", "A", "10.555"),
		factura("f2", "A", "no-es-numero"),
		factura("f3", "A", "0.445"),
	}

	agregados := appsync.Agrupar(facturas, entity.EstadoPendiente)
	require.Len(t, agregados, 1)
	assert.True(t, agregados[0].TotalPagado.Equal(decimal.RequireFromString("11.00")),
		"10.555 + 0 + 0.445 redondeado a 2 decimales, obtuvo %s", agregados[0].TotalPagado)
}

// idcliente vacío cae en la cubeta centinela, nunca se rechaza.
func TestAgrupar_ClienteVacioVaAlCentinela(t *testing.T) {
	facturas := []entity.Factura{
		factura("f1", "", "5.00"),
		factura("f2", "A", "1.00"),
		factura("f3", "", "5.00"),
	}

	agregados := appsync.Agrupar(facturas, entity.EstadoPagado)
	require.Len(t, agregados, 2)
	assert.Equal(t, entity.ClienteDesconocido, agregados[0].IDCliente)
	assert.Equal(t, 2, agregados[0].NumFacturas)
}

// El agrupamiento es determinista: la pertenencia y los totales no dependen
// del orden de entrada, y el desempate por idcliente fija también el orden.
func TestAgrupar_DeterministaBajoPermutaciones(t *testing.T) {
	base := []entity.Factura{
		factura("f1", "A", "10.00"),
		factura("f2", "B", "20.00"),
		factura("f3", "C", "30.00"),
		factura("f4", "B", "5.00"),
		factura("f5", "C", "1.00"),
	}
	esperado := appsync.Agrupar(base, entity.EstadoPagado)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		permutada := make([]entity.Factura, len(base))
		copy(permutada, base)
		rng.Shuffle(len(permutada), func(a, b int) {
			permutada[a], permutada[b] = permutada[b], permutada[a]
		})

		agregados := appsync.Agrupar(permutada, entity.EstadoPagado)
		require.Len(t, agregados, len(esperado))
		for j := range esperado {
			assert.Equal(t, esperado[j].IDCliente, agregados[j].IDCliente)
			assert.Equal(t, esperado[j].NumFacturas, agregados[j].NumFacturas)
			assert.True(t, esperado[j].TotalPagado.Equal(agregados[j].TotalPagado))
		}
	}
}

func TestAgrupar_ListaVacia(t *testing.T) {
	agregados := appsync.Agrupar(nil, entity.EstadoPagado)
	assert.Empty(t, agregados)
}
