package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/pkg/logger"
)

// EstadoSync metadata de ambos datasets; nil por tipo si nunca se sincronizó.
type EstadoSync struct {
	Pagadas    *entity.SyncMetadata `json:"pagadas"`
	Pendientes *entity.SyncMetadata `json:"pendientes"`
}

// Orchestrator decide si el caché de un dataset es servible o si toca
// refrescarlo (rastreo → agrupación → escritura de caché), y coordina los dos
// datasets de forma independiente: el fallo de uno nunca bloquea al otro.
//
// A lo sumo un refresco en vuelo por tipo: un mutex por dataset serializa las
// escrituras y un caller que llega con un refresco en curso espera y reutiliza
// el resultado en vez de duplicar el rastreo.
type Orchestrator struct {
	crawler   *Crawler
	cache     AlmacenCache
	historial HistorialRepository // opcional; nil = sin auditoría persistente
	log       *logger.Logger
	ventana   time.Duration

	ahora func() time.Time
	locks map[entity.TipoDataset]*stdsync.Mutex
}

// NewOrchestrator construye el orquestador. ventana es la ventana de frescura
// del caché; historial puede ser nil.
func NewOrchestrator(crawler *Crawler, cache AlmacenCache, historial HistorialRepository, ventana time.Duration, log *logger.Logger) *Orchestrator {
	locks := make(map[entity.TipoDataset]*stdsync.Mutex, 2)
	for _, tipo := range entity.Tipos() {
		locks[tipo] = &stdsync.Mutex{}
	}
	return &Orchestrator{
		crawler:   crawler,
		cache:     cache,
		historial: historial,
		log:       log,
		ventana:   ventana,
		ahora:     time.Now,
		locks:     locks,
	}
}

// Obtener devuelve los agregados del dataset. Con caché fresco no toca la
// red; con caché vencido o ausente refresca de forma síncrona. Si el refresco
// falla pero existe un caché anterior, se sirve ese caché: el caller solo ve
// un error cuando no hay ningún dato al que recurrir.
func (o *Orchestrator) Obtener(ctx context.Context, tipo entity.TipoDataset) ([]entity.ClienteAgregado, error) {
	if !tipo.Valido() {
		return nil, domain.ErrTipoInvalido
	}
	if datos, ok := o.leerSiFresco(tipo); ok {
		return datos, nil
	}
	datos, err := o.refrescar(ctx, tipo, false)
	if err != nil {
		if entrada, errCache := o.cache.Leer(tipo); errCache == nil {
			o.log.Warn().
				Str("tipo", string(tipo)).
				Err(err).
				Msg("refresco fallido, se sirve el caché anterior")
			return entrada.Data, nil
		}
		return nil, err
	}
	return datos, nil
}

// ForzarSincronizacion refresca ambos datasets concurrentemente sin mirar la
// frescura. Espera a que terminen los dos intentos y devuelve el resultado de
// cada uno; el fallo de un tipo no impide el intento del otro y solo queda
// visible vía Estado y el historial.
func (o *Orchestrator) ForzarSincronizacion(ctx context.Context) map[entity.TipoDataset]error {
	var wg stdsync.WaitGroup
	var mu stdsync.Mutex
	resultados := make(map[entity.TipoDataset]error, 2)

	for _, tipo := range entity.Tipos() {
		wg.Add(1)
		go func(tipo entity.TipoDataset) {
			defer wg.Done()
			_, err := o.refrescar(ctx, tipo, true)
			if err != nil {
				o.log.Error().
					Str("tipo", string(tipo)).
					Err(err).
					Msg("sincronización forzada fallida")
			}
			mu.Lock()
			resultados[tipo] = err
			mu.Unlock()
		}(tipo)
	}

	wg.Wait()
	return resultados
}

// Estado devuelve la metadata actual de ambos datasets.
func (o *Orchestrator) Estado() EstadoSync {
	return EstadoSync{
		Pagadas:    o.metadataONil(entity.TipoPagadas),
		Pendientes: o.metadataONil(entity.TipoPendientes),
	}
}

// ObtenerCliente busca el agregado de un cliente dentro del dataset servible.
func (o *Orchestrator) ObtenerCliente(ctx context.Context, tipo entity.TipoDataset, idCliente string) (*entity.ClienteAgregado, error) {
	agregados, err := o.Obtener(ctx, tipo)
	if err != nil {
		return nil, err
	}
	for i := range agregados {
		if agregados[i].IDCliente == idCliente {
			return &agregados[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (o *Orchestrator) metadataONil(tipo entity.TipoDataset) *entity.SyncMetadata {
	md, err := o.cache.LeerMetadata(tipo)
	if err != nil {
		return nil
	}
	return md
}

// leerSiFresco sirve el caché si el último intento de sincronización cae
// dentro de la ventana y la entrada es legible. La frescura se mide sobre el
// último intento, exitoso o no: un intento fallido reciente no dispara un
// nuevo rastreo en cada lectura mientras el caché anterior siga sirviéndose.
func (o *Orchestrator) leerSiFresco(tipo entity.TipoDataset) ([]entity.ClienteAgregado, bool) {
	md, err := o.cache.LeerMetadata(tipo)
	if err != nil {
		return nil, false
	}
	if o.ahora().Sub(md.UltimaSync) >= o.ventana {
		return nil, false
	}
	entrada, err := o.cache.Leer(tipo)
	if err != nil {
		return nil, false
	}
	return entrada.Data, true
}

// refrescar ejecuta rastreo → agrupación → escritura bajo el lock del tipo.
// Sin forzado, un refresco que terminó mientras esperábamos el lock se
// reutiliza. Todo intento, exitoso o no, sobreescribe la metadata y se anota
// en el historial; la entrada de datos solo se reemplaza en éxito.
func (o *Orchestrator) refrescar(ctx context.Context, tipo entity.TipoDataset, forzado bool) ([]entity.ClienteAgregado, error) {
	lock := o.locks[tipo]
	lock.Lock()
	defer lock.Unlock()

	if !forzado {
		if datos, ok := o.leerSiFresco(tipo); ok {
			return datos, nil
		}
	}

	inicio := o.ahora()
	facturas, err := o.crawler.Rastrear(ctx, tipo)
	if err != nil {
		o.cerrarIntento(ctx, tipo, inicio, 0, 0, err)
		return nil, err
	}

	agregados := Agrupar(facturas, tipo.EstadoTag())
	md := entity.SyncMetadata{
		UltimaSync:    o.ahora(),
		TotalFacturas: len(facturas),
		TotalClientes: len(agregados),
		DuracionMs:    o.ahora().Sub(inicio).Milliseconds(),
		Exito:         true,
	}

	if err := o.cache.Guardar(tipo, &entity.CacheEntry{Data: agregados, Metadata: md}); err != nil {
		o.cerrarIntento(ctx, tipo, inicio, len(facturas), len(agregados), err)
		return nil, err
	}
	o.cerrarIntento(ctx, tipo, inicio, len(facturas), len(agregados), nil)

	o.log.Info().
		Str("tipo", string(tipo)).
		Int("facturas", md.TotalFacturas).
		Int("clientes", md.TotalClientes).
		Int64("duracion_ms", md.DuracionMs).
		Msg("sincronización completada")
	return agregados, nil
}

// cerrarIntento sobreescribe la metadata del tipo y anota el intento en el
// historial. errIntento nil = éxito.
func (o *Orchestrator) cerrarIntento(ctx context.Context, tipo entity.TipoDataset, inicio time.Time, facturas, clientes int, errIntento error) {
	md := entity.SyncMetadata{
		UltimaSync:    o.ahora(),
		TotalFacturas: facturas,
		TotalClientes: clientes,
		DuracionMs:    o.ahora().Sub(inicio).Milliseconds(),
		Exito:         errIntento == nil,
	}
	if errIntento != nil {
		md.Error = errIntento.Error()
		md.TotalFacturas = 0
		md.TotalClientes = 0
	}
	if err := o.cache.GuardarMetadata(tipo, &md); err != nil {
		o.log.Error().Str("tipo", string(tipo)).Err(err).Msg("no se pudo guardar la metadata de sync")
	}
	if o.historial == nil {
		return
	}
	registro := &entity.RegistroSync{
		ID:            uuid.New().String(),
		Tipo:          tipo,
		Inicio:        inicio,
		DuracionMs:    md.DuracionMs,
		TotalFacturas: md.TotalFacturas,
		TotalClientes: md.TotalClientes,
		Exito:         md.Exito,
		Error:         md.Error,
	}
	if err := o.historial.Registrar(ctx, registro); err != nil {
		o.log.Error().Str("tipo", string(tipo)).Err(err).Msg("no se pudo registrar el intento en el historial")
	}
}
