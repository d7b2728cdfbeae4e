package normalizar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/facturas-api/pkg/normalizar"
)

func TestPlegar(t *testing.T) {
	assert.Equal(t, "perez", normalizar.Plegar("  Pérez "))
	assert.Equal(t, "nunez", normalizar.Plegar("NÚÑEZ"))
	assert.Equal(t, "", normalizar.Plegar("   "))
}

func TestContiene(t *testing.T) {
	assert.True(t, normalizar.Contiene("García S.A.", "garcia"))
	assert.True(t, normalizar.Contiene("cliente-042", ""))
	assert.False(t, normalizar.Contiene("García S.A.", "lopez"))
}
