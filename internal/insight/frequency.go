package insight

import (
	"fmt"
	"math"
	"time"

	"github.com/spendlens/spendlens/internal/model"
)

// FrequencySpike flags the most recent active day whose transaction
// count spikes well above the historical daily average within the
// lookback window. "Most recent active day" is the latest day with any
// activity, which is not necessarily today. Only that day is
// evaluated; historical spikes are not reported. A non-positive window
// or a window with no transactions yields an empty result.
func (e *Engine) FrequencySpike(txns []model.Transaction, days int) model.Insights {
	if days <= 0 {
		return nil
	}

	now := e.now()
	cutoff := now.AddDate(0, 0, -days)

	buckets := make(map[time.Time][]model.Transaction)
	for _, tx := range txns {
		if tx.Date.Before(cutoff) || tx.Date.After(now) {
			continue
		}
		day := e.dayStart(tx.Date)
		buckets[day] = append(buckets[day], tx)
	}
	if len(buckets) == 0 {
		return nil
	}

	var latestDay time.Time
	for day := range buckets {
		if day.After(latestDay) {
			latestDay = day
		}
	}
	latestCount := len(buckets[latestDay])

	var averageCount float64
	if otherDays := len(buckets) - 1; otherDays > 0 {
		total := 0
		for day, bucket := range buckets {
			if !day.Equal(latestDay) {
				total += len(bucket)
			}
		}
		averageCount = float64(total) / float64(otherDays)
	}

	threshold := int(math.Ceil(math.Max(1, averageCount) * e.thresholds.FrequencySpikeRatio))
	if threshold < minSpikeCount {
		threshold = minSpikeCount
	}
	if latestCount < threshold {
		return nil
	}

	label := categoryLabel(buckets[latestDay][0], model.DefaultSpendingCategory)
	return model.Insights{{
		ID:    e.newID(),
		Title: fmt.Sprintf("Unusual number of %s transactions", label),
		Description: fmt.Sprintf(
			"You made %d transactions on %s, compared with your usual %.1f per day.",
			latestCount, latestDay.Format("Jan 2"), averageCount),
		Type:     model.InsightAnomaly,
		Priority: model.PriorityMedium,
	}}
}
