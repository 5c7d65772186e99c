package application

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ForecastPoint is one projected day of revenue.
type ForecastPoint struct {
	Date    time.Time       `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Forecast is a revenue projection. NextWeekRevenue sums the first seven
// projected days.
type Forecast struct {
	Points          []ForecastPoint `json:"points"`
	NextWeekRevenue decimal.Decimal `json:"next_week_revenue"`
}

// LinearForecast projects daysOut days of revenue from a daily series by
// ordinary least squares over (day index, revenue). A series shorter than 3
// points carries too little slope signal, so it degrades to a flat projection
// at the mean of the trailing 7 available days (zero when the series is
// empty). Predictions are clamped at zero; revenue never goes negative.
//
// Pure function: same series in, same projection out.
func LinearForecast(series []DailyBucket, daysOut int) Forecast {
	if daysOut <= 0 {
		daysOut = 30
	}

	start := time.Now().UTC().Truncate(24 * time.Hour)
	if len(series) > 0 {
		start = series[len(series)-1].Date
	}

	predict := flatPredictor(series)
	if len(series) >= 3 {
		predict = regressionPredictor(series)
	}

	forecast := Forecast{Points: make([]ForecastPoint, 0, daysOut)}
	for i := 0; i < daysOut; i++ {
		predicted := predict(len(series) + i)
		if predicted < 0 {
			predicted = 0
		}
		revenue := decimal.NewFromFloat(predicted).Round(2)
		forecast.Points = append(forecast.Points, ForecastPoint{
			Date:    start.AddDate(0, 0, i+1),
			Revenue: revenue,
		})
		if i < 7 {
			forecast.NextWeekRevenue = forecast.NextWeekRevenue.Add(revenue)
		}
	}
	return forecast
}

// flatPredictor projects the mean of the trailing 7 available days.
func flatPredictor(series []DailyBucket) func(int) float64 {
	window := series
	if len(window) > 7 {
		window = window[len(window)-7:]
	}
	var sum float64
	for _, b := range window {
		sum += b.Revenue.InexactFloat64()
	}
	mean := 0.0
	if len(window) > 0 {
		mean = sum / float64(len(window))
	}
	return func(int) float64 { return mean }
}

// regressionPredictor fits y = a + b*x over (day index, revenue).
func regressionPredictor(series []DailyBucket) func(int) float64 {
	n := float64(len(series))
	var sumX, sumY, sumXY, sumXX float64
	for i, b := range series {
		x := float64(i)
		y := b.Revenue.InexactFloat64()
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		denom = 1
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n
	return func(x int) float64 {
		v := intercept + slope*float64(x)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	}
}
