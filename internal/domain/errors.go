package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrUpstream       = errors.New("error de conexión con el facturador")
	ErrSemillaFallida = errors.New("la consulta semilla del rastreo falló")
	ErrTipoInvalido   = errors.New("tipo de dataset inválido")
	ErrInvalidInput   = errors.New("entrada inválida")
)
