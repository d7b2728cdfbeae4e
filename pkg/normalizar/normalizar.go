// Package normalizar pliega texto para búsquedas insensibles a tildes y
// mayúsculas ("Pérez" y "perez" deben coincidir).
package normalizar

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// quitaDiacriticos descompone (NFD), elimina las marcas combinantes y recompone (NFC).
var quitaDiacriticos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Plegar devuelve s en minúsculas, sin tildes ni espacios en los extremos.
// Si la transformación falla devuelve al menos la versión en minúsculas.
func Plegar(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	out, _, err := transform.String(quitaDiacriticos, s)
	if err != nil {
		return s
	}
	return out
}

// Contiene indica si el texto plegado de s contiene el término plegado.
// Un término vacío coincide con todo.
func Contiene(s, termino string) bool {
	termino = Plegar(termino)
	if termino == "" {
		return true
	}
	return strings.Contains(Plegar(s), termino)
}
