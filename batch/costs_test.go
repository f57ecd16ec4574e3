package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCostRTX4090(t *testing.T) {
	est := EstimateCost(10000, "RTX 4090", 8.0)

	assert.Equal(t, 10000, est.NumImages)
	assert.Equal(t, "RTX 4090", est.GPUType)
	assert.InDelta(t, 22.22, est.EstimatedHours, 1e-9)
	assert.InDelta(t, 0.69, est.HourlyRate, 1e-9)
	assert.InDelta(t, 15.33, est.TotalCost, 1e-9)
	assert.InDelta(t, 0.0015, est.CostPerImage, 1e-9)
	assert.InDelta(t, 8.0, est.AvgTimePerImage, 1e-9)
}

func TestEstimateCostKnownRates(t *testing.T) {
	cases := []struct {
		gpu  string
		rate float64
	}{
		{"RTX 4090", 0.69},
		{"RTX 3090", 0.44},
		{"A40", 0.79},
		{"A100 40GB", 1.89},
		{"A100 80GB", 2.49},
	}
	for _, tc := range cases {
		est := EstimateCost(100, tc.gpu, 10)
		assert.InDelta(t, tc.rate, est.HourlyRate, 1e-9, tc.gpu)
	}
}

func TestEstimateCostUnknownGPUFallsBack(t *testing.T) {
	est := EstimateCost(10000, "H100 PCIe", 8.0)
	assert.InDelta(t, 0.69, est.HourlyRate, 1e-9)
	assert.InDelta(t, 15.33, est.TotalCost, 1e-9)
}

func TestEstimateCostScalesLinearly(t *testing.T) {
	small := EstimateCost(100, "A40", 10)
	large := EstimateCost(1000, "A40", 10)
	assert.InDelta(t, small.TotalCost*10, large.TotalCost, 0.05)
	// per-image cost is independent of batch size
	assert.InDelta(t, small.CostPerImage, large.CostPerImage, 1e-4)
}
