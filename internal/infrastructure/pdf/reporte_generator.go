// Package pdf genera el resumen imprimible del caché de facturas por cliente.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Resumen de facturas <dataset> │ fecha de sync       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cliente | N° Facturas | Total                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: clientes / facturas / importe acumulado            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ReporteGenerator genera el PDF de resumen de agregados por cliente.
type ReporteGenerator struct{}

// NewReporteGenerator construye el generador.
func NewReporteGenerator() *ReporteGenerator {
	return &ReporteGenerator{}
}

// GenerarResumen arma el PDF para un dataset con los agregados del caché y la
// metadata de su última sincronización.
func (g *ReporteGenerator) GenerarResumen(tipo entity.TipoDataset, md *entity.SyncMetadata, agregados []entity.ClienteAgregado) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Resumen de facturas", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(tipo, md))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range tableRows(agregados) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(agregados))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar resumen: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título del dataset (izq) y fecha de la última sincronización (der).
func headerRow(tipo entity.TipoDataset, md *entity.SyncMetadata) core.Row {
	return row.New(10).Add(
		col.New(8).Add(text.New(
			fmt.Sprintf("Resumen de facturas %s", tipo),
			props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary},
		)),
		col.New(4).Add(text.New(
			"Sincronizado: "+md.UltimaSync.Format("2006-01-02 15:04"),
			props.Text{Size: 8, Align: align.Right, Color: colorGray, Top: 3},
		)),
	)
}

// tableHeaderRow: cabecera de la tabla de agregados.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: a, Color: colorPrimary, Top: 1,
		}))
	}
	return row.New(8).Add(
		h("Cliente", 6, align.Left),
		h("N° Facturas", 3, align.Center),
		h("Total", 3, align.Right),
	)
}

// tableRows: una fila por cliente, en el orden del caché (mayor volumen primero).
func tableRows(agregados []entity.ClienteAgregado) []core.Row {
	result := make([]core.Row, 0, len(agregados))
	for _, a := range agregados {
		result = append(result, row.New(6).Add(
			col.New(6).Add(text.New(a.IDCliente, props.Text{Size: 9})),
			col.New(3).Add(text.New(
				fmt.Sprintf("%d", a.NumFacturas),
				props.Text{Size: 9, Align: align.Center},
			)),
			col.New(3).Add(text.New(
				a.TotalPagado.StringFixed(2),
				props.Text{Size: 9, Align: align.Right},
			)),
		))
	}
	return result
}

// totalsRow: totales de clientes, facturas e importe acumulado.
func totalsRow(agregados []entity.ClienteAgregado) core.Row {
	totalImporte := decimal.Zero
	totalFacturas := 0
	for _, a := range agregados {
		totalImporte = totalImporte.Add(a.TotalPagado)
		totalFacturas += a.NumFacturas
	}
	negrita := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: a, Top: 1,
		}))
	}
	return row.New(8).Add(
		negrita(fmt.Sprintf("%d clientes", len(agregados)), 6, align.Left),
		negrita(fmt.Sprintf("%d", totalFacturas), 3, align.Center),
		negrita(totalImporte.Round(2).StringFixed(2), 3, align.Right),
	)
}
