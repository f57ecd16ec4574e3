package batch

import "math"

// Approximate RunPod on-demand pricing in $/hour, as of 2024.
var gpuRates = map[string]float64{
	"RTX 4090":  0.69,
	"RTX 3090":  0.44,
	"A40":       0.79,
	"A100 40GB": 1.89,
	"A100 80GB": 2.49,
}

// defaultGPURate applies when the GPU type is not in the table.
const defaultGPURate = 0.69

// CostEstimate is the projected cost of running a batch on rented GPU time.
type CostEstimate struct {
	NumImages       int     `json:"num_images"`
	GPUType         string  `json:"gpu_type"`
	EstimatedHours  float64 `json:"estimated_hours"`
	HourlyRate      float64 `json:"hourly_rate"`
	TotalCost       float64 `json:"total_cost"`
	CostPerImage    float64 `json:"cost_per_image"`
	AvgTimePerImage float64 `json:"avg_time_per_image"`
}

// EstimateCost projects the GPU rental cost for processing numImages at
// avgSecondsPerImage on the given GPU type. Pure arithmetic, no I/O.
func EstimateCost(numImages int, gpuType string, avgSecondsPerImage float64) CostEstimate {
	rate, ok := gpuRates[gpuType]
	if !ok {
		rate = defaultGPURate
	}

	totalHours := float64(numImages) * avgSecondsPerImage / 3600
	totalCost := totalHours * rate

	return CostEstimate{
		NumImages:       numImages,
		GPUType:         gpuType,
		EstimatedHours:  roundTo(totalHours, 2),
		HourlyRate:      rate,
		TotalCost:       roundTo(totalCost, 2),
		CostPerImage:    roundTo(totalCost/float64(numImages), 4),
		AvgTimePerImage: avgSecondsPerImage,
	}
}

func roundTo(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
