package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightedAverage_RedondeaHaciaArriba(t *testing.T) {
	// 10 @ 50000 + 5 @ 60000 = 800000 / 15 = 53333.33 → 53334
	got := WeightedAverage(10, 50000, 5, 60000)
	assert.Equal(t, int64(53334), got)
}

func TestWeightedAverage_DivisionExactaNoRedondea(t *testing.T) {
	// 10 @ 100 + 10 @ 200 = 3000 / 20 = 150 exacto
	got := WeightedAverage(10, 100, 10, 200)
	assert.Equal(t, int64(150), got)
}

func TestWeightedAverage_CuentaVaciaTomaCostoDeEntrada(t *testing.T) {
	assert.Equal(t, int64(777), WeightedAverage(0, 0, 3, 777))
	// Cantidad negativa (backorder): la entrada fija el costo directamente.
	assert.Equal(t, int64(500), WeightedAverage(-4, 120, 10, 500))
}

func TestWeightedAverage_EntradaNoPositivaConservaPromedio(t *testing.T) {
	assert.Equal(t, int64(250), WeightedAverage(8, 250, 0, 999))
	assert.Equal(t, int64(250), WeightedAverage(8, 250, -2, 999))
}

func TestWeightedAverage_MismoCostoNoCambia(t *testing.T) {
	assert.Equal(t, int64(50000), WeightedAverage(10, 50000, 5, 50000))
}

func TestWeightedAverage_EntradaGratisDiluyeElCosto(t *testing.T) {
	// 10 @ 1000 + 10 @ 0 = 10000 / 20 = 500
	assert.Equal(t, int64(500), WeightedAverage(10, 1000, 10, 0))
}

func TestCOGS(t *testing.T) {
	assert.Equal(t, int64(160002), COGS(3, 53334))
	assert.Equal(t, int64(0), COGS(0, 53334))
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, int64(54), ceilDiv(160, 3))
	assert.Equal(t, int64(50), ceilDiv(150, 3))
	assert.Equal(t, int64(1), ceilDiv(1, 3))
}
