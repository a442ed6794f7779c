package metrics

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/stumpboost/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// MarginSummary はマージン分布の要約統計量
type MarginSummary struct {
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`

	// NonPositive はマージンが 0 以下（誤分類または判定なし）の割合
	NonPositive float64 `json:"non_positive"`
}

// sortedMargins は検証済みのマージンを昇順にコピーして返す
func sortedMargins(op string, margins []float64) ([]float64, error) {
	if len(margins) == 0 {
		return nil, errors.NewValueError(op, "empty margins")
	}
	if err := errors.CheckNumericalStability(op, margins, 0); err != nil {
		return nil, err
	}
	sorted := make([]float64, len(margins))
	copy(sorted, margins)
	sort.Float64s(sorted)
	return sorted, nil
}

// SummarizeMargins はマージン分布の要約統計量を計算する
func SummarizeMargins(margins []float64) (MarginSummary, error) {
	sorted, err := sortedMargins("SummarizeMargins", margins)
	if err != nil {
		return MarginSummary{}, err
	}

	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		std = 0
	}
	nonPositive := sort.SearchFloat64s(sorted, math.Nextafter(0, 1))

	return MarginSummary{
		N:           len(sorted),
		Min:         sorted[0],
		Mean:        mean,
		Std:         std,
		Median:      stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Max:         sorted[len(sorted)-1],
		NonPositive: float64(nonPositive) / float64(len(sorted)),
	}, nil
}

// MarginCDF はしきい値 thresholds における経験累積分布 P(margin ≤ θ) を返す
func MarginCDF(margins, thresholds []float64) ([]float64, error) {
	sorted, err := sortedMargins("MarginCDF", margins)
	if err != nil {
		return nil, err
	}

	cdf := make([]float64, len(thresholds))
	for i, theta := range thresholds {
		cdf[i] = stat.CDF(theta, stat.Empirical, sorted, nil)
	}
	return cdf, nil
}

// MarginGrid は [-1, 1] を等間隔に分割した n 個のしきい値を返す
func MarginGrid(n int) []float64 {
	if n < 2 {
		return []float64{1}
	}
	grid := make([]float64, n)
	step := 2 / float64(n-1)
	for i := range grid {
		grid[i] = -1 + float64(i)*step
	}
	grid[n-1] = 1
	return grid
}
