package session

import (
	"math"

	"classpulse/pkg/types"
)

// Summarize folds the latest per-student vectors into one classroom
// summary. A nil entry is a student who has not reported yet; only
// active vectors (camera on, face detected) contribute to the averages.
// With zero active students every average is 0 — the divisor is never
// the full student count.
//
// Pure function, safe to call concurrently on a snapshot.
func Summarize(vectors []*types.EmotionVector) types.AggregateSummary {
	var (
		sums     types.EmotionScores
		confused float64
		engaged  float64
		active   int
	)

	for _, v := range vectors {
		if !v.Active() {
			continue
		}
		active++
		sums.Happy += v.Emotions.Happy
		sums.Sad += v.Emotions.Sad
		sums.Angry += v.Emotions.Angry
		sums.Fearful += v.Emotions.Fearful
		sums.Surprised += v.Emotions.Surprised
		sums.Disgusted += v.Emotions.Disgusted
		sums.Neutral += v.Emotions.Neutral
		confused += v.Confused
		engaged += v.Engaged
	}

	divisor := float64(active)
	if active == 0 {
		divisor = 1
	}

	avg := func(sum float64) int { return int(math.Round(sum / divisor)) }

	return types.AggregateSummary{
		Emotions: types.CategoryAverages{
			Happy:     avg(sums.Happy),
			Sad:       avg(sums.Sad),
			Angry:     avg(sums.Angry),
			Fearful:   avg(sums.Fearful),
			Surprised: avg(sums.Surprised),
			Disgusted: avg(sums.Disgusted),
			Neutral:   avg(sums.Neutral),
		},
		Confused:       avg(confused),
		Engaged:        avg(engaged),
		TotalStudents:  len(vectors),
		ActiveStudents: active,
	}
}
