package lib

import "math"

// AverageInt64 compute statistical mean, variance and
// standard-deviation over a set of int64 samples.
type AverageInt64 struct {
	n      int64
	minval int64
	maxval int64
	sum    int64
	sumsq  float64
	init   bool
}

// Add a sample.
func (av *AverageInt64) Add(sample int64) {
	av.n++
	av.sum += sample
	f := float64(sample)
	av.sumsq += f * f
	if av.init == false || sample < av.minval {
		av.minval = sample
		av.init = true
	}
	if av.maxval < sample {
		av.maxval = sample
	}
}

// Min value from sample set.
func (av *AverageInt64) Min() int64 {
	return av.minval
}

// Max value from sample set.
func (av *AverageInt64) Max() int64 {
	return av.maxval
}

// Samples return total number of samples in the set.
func (av *AverageInt64) Samples() int64 {
	return av.n
}

// Sum of all samples.
func (av *AverageInt64) Sum() int64 {
	return av.sum
}

// Mean of all samples.
func (av *AverageInt64) Mean() int64 {
	if av.n == 0 {
		return 0
	}
	return int64(float64(av.sum) / float64(av.n))
}

// Variance of the sample set from its mean.
func (av *AverageInt64) Variance() float64 {
	if av.n == 0 {
		return 0
	}
	nF, meanF := float64(av.n), float64(av.Mean())
	return (av.sumsq / nF) - (meanF * meanF)
}

// SD return by how much the samples differ from the mean value
// of the sample set.
func (av *AverageInt64) SD() float64 {
	if av.n == 0 {
		return 0
	}
	return math.Sqrt(av.Variance())
}

// Merge another averager into this one.
func (av *AverageInt64) Merge(other *AverageInt64) {
	if other.n == 0 {
		return
	}
	if av.init == false || other.minval < av.minval {
		av.minval = other.minval
		av.init = true
	}
	if av.maxval < other.maxval {
		av.maxval = other.maxval
	}
	av.n += other.n
	av.sum += other.sum
	av.sumsq += other.sumsq
}
