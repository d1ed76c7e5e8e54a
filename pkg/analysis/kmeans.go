// Package analysis implements the signal processing stages of the LCMS
// pipeline: window extraction, peak detection, SNR scoring and validity
// classification.
package analysis

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// kmeansSeed fixes cluster initialization so repeated runs over the same
// trace produce the same partition.
const kmeansSeed = 42

// maxKMeansIterations bounds the assign/update loop; 1-D k=2 converges in
// a handful of iterations in practice.
const maxKMeansIterations = 100

// kmeans2 partitions 1-D values into two clusters. Returns per-value
// cluster assignments (0 or 1) and the two cluster means, with center 0
// the smaller mean.
func kmeans2(values []float64) (assignments []int, centers [2]float64) {
	rng := rand.New(rand.NewSource(kmeansSeed))

	// Initialize from two distinct random points when possible.
	c0 := values[rng.Intn(len(values))]
	c1 := c0
	for attempt := 0; attempt < len(values) && c1 == c0; attempt++ {
		c1 = values[rng.Intn(len(values))]
	}
	if c1 == c0 {
		// All values identical; both centers collapse.
		assignments = make([]int, len(values))
		centers[0], centers[1] = c0, c0
		return assignments, centers
	}
	if c0 > c1 {
		c0, c1 = c1, c0
	}

	assignments = make([]int, len(values))
	for iter := 0; iter < maxKMeansIterations; iter++ {
		changed := false
		for i, v := range values {
			cluster := 0
			if math.Abs(v-c1) < math.Abs(v-c0) {
				cluster = 1
			}
			if assignments[i] != cluster {
				assignments[i] = cluster
				changed = true
			}
		}

		var sum [2]float64
		var count [2]int
		for i, v := range values {
			sum[assignments[i]] += v
			count[assignments[i]]++
		}
		if count[0] > 0 {
			next := sum[0] / float64(count[0])
			if next != c0 {
				c0 = next
				changed = true
			}
		}
		if count[1] > 0 {
			next := sum[1] / float64(count[1])
			if next != c1 {
				c1 = next
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	if c0 > c1 {
		c0, c1 = c1, c0
		for i := range assignments {
			assignments[i] = 1 - assignments[i]
		}
	}
	centers[0], centers[1] = c0, c1
	return assignments, centers
}

// separationRatio computes between-cluster sum-of-squares over total
// within-cluster sum-of-squares for a two-cluster partition. A degenerate
// within-cluster spread (perfectly tight clusters) reports +Inf when the
// clusters are apart, 0 when everything coincides.
func separationRatio(values []float64, assignments []int, centers [2]float64) float64 {
	grand := stat.Mean(values, nil)

	var ssb, ssw float64
	var count [2]float64
	for i, v := range values {
		k := assignments[i]
		d := v - centers[k]
		ssw += d * d
		count[k]++
	}
	for k := 0; k < 2; k++ {
		d := centers[k] - grand
		ssb += count[k] * d * d
	}

	if ssw < 1e-12 {
		if ssb < 1e-12 {
			return 0
		}
		return math.Inf(1)
	}
	return ssb / ssw
}

// classBreak computes a single class-interval boundary between the two
// m/z clusters, in the style of 1-D k-means breaks: the midpoint between
// the maximum of the lower cluster and the minimum of the upper cluster.
func classBreak(values []float64, assignments []int) float64 {
	lowerMax := math.Inf(-1)
	upperMin := math.Inf(1)
	for i, v := range values {
		if assignments[i] == 0 {
			if v > lowerMax {
				lowerMax = v
			}
		} else {
			if v < upperMin {
				upperMin = v
			}
		}
	}
	return (lowerMax + upperMin) / 2
}
