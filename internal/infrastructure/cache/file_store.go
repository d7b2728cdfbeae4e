// Package cache implementa el almacén de caché en disco: un documento JSON
// por dataset más un índice de metadata compartido. Nadie más toca estos
// archivos; las escrituras reemplazan el documento completo para que data y
// metadata nunca se lean desfasadas.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	stdsync "sync"

	appsync "github.com/jhoicas/facturas-api/internal/application/sync"
	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

var _ appsync.AlmacenCache = (*FileStore)(nil)

const (
	archivoIndice = "sync_metadata.json"
	prefijoDatos  = "facturas_"
)

// indiceMetadata contenido de sync_metadata.json.
type indiceMetadata struct {
	Pagadas    *entity.SyncMetadata `json:"pagadas,omitempty"`
	Pendientes *entity.SyncMetadata `json:"pendientes,omitempty"`
}

// FileStore almacén de caché respaldado por archivos JSON.
//
// Las lecturas nunca son fatales: archivo ausente o contenido corrupto se
// reportan como domain.ErrNotFound y el caller lo trata igual que "caché
// vacío, toca refrescar". Las escrituras van a archivo temporal + rename para
// que un lector concurrente vea siempre un documento completo.
type FileStore struct {
	dir string
	mu  stdsync.Mutex // serializa lecturas-modificaciones del índice
}

// NewFileStore construye el almacén y crea el directorio de datos si no
// existe (idempotente, se invoca una vez al arrancar).
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: crear directorio %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Leer devuelve la entrada de caché del dataset o domain.ErrNotFound.
func (s *FileStore) Leer(tipo entity.TipoDataset) (*entity.CacheEntry, error) {
	raw, err := os.ReadFile(s.rutaDatos(tipo))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var entrada entity.CacheEntry
	if err := json.Unmarshal(raw, &entrada); err != nil {
		return nil, domain.ErrNotFound
	}
	return &entrada, nil
}

// Guardar reemplaza la entrada completa del dataset y actualiza el índice de
// metadata con la metadata de la entrada.
func (s *FileStore) Guardar(tipo entity.TipoDataset, entrada *entity.CacheEntry) error {
	if err := s.escribirJSON(s.rutaDatos(tipo), entrada); err != nil {
		return fmt.Errorf("cache: guardar %s: %w", tipo, err)
	}
	return s.GuardarMetadata(tipo, &entrada.Metadata)
}

// LeerMetadata devuelve la metadata del dataset desde el índice compartido,
// o domain.ErrNotFound si nunca se sincronizó.
func (s *FileStore) LeerMetadata(tipo entity.TipoDataset) (*entity.SyncMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	indice := s.leerIndice()
	md := indice.de(tipo)
	if md == nil {
		return nil, domain.ErrNotFound
	}
	return md, nil
}

// GuardarMetadata sobreescribe la metadata de un dataset en el índice sin
// tocar la del otro.
func (s *FileStore) GuardarMetadata(tipo entity.TipoDataset, md *entity.SyncMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	indice := s.leerIndice()
	if tipo == entity.TipoPagadas {
		indice.Pagadas = md
	} else {
		indice.Pendientes = md
	}
	if err := s.escribirJSON(filepath.Join(s.dir, archivoIndice), indice); err != nil {
		return fmt.Errorf("cache: guardar metadata %s: %w", tipo, err)
	}
	return nil
}

func (i indiceMetadata) de(tipo entity.TipoDataset) *entity.SyncMetadata {
	if tipo == entity.TipoPagadas {
		return i.Pagadas
	}
	return i.Pendientes
}

// leerIndice devuelve el índice actual; un índice ausente o corrupto es un
// índice vacío.
func (s *FileStore) leerIndice() indiceMetadata {
	var indice indiceMetadata
	raw, err := os.ReadFile(filepath.Join(s.dir, archivoIndice))
	if err != nil {
		return indice
	}
	_ = json.Unmarshal(raw, &indice)
	return indice
}

// escribirJSON serializa v y lo deja en ruta vía temporal + rename.
func (s *FileStore) escribirJSON(ruta string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serializar: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, filepath.Base(ruta)+".tmp-*")
	if err != nil {
		return fmt.Errorf("archivo temporal: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("escribir: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cerrar temporal: %w", err)
	}
	if err := os.Rename(tmp.Name(), ruta); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("reemplazar %s: %w", ruta, err)
	}
	return nil
}

func (s *FileStore) rutaDatos(tipo entity.TipoDataset) string {
	return filepath.Join(s.dir, prefijoDatos+string(tipo)+".json")
}
