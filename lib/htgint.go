package lib

import "fmt"
import "sort"
import "strings"

// HistogramInt64 statistical histogram of int64 samples between
// a pre-configured range, sliced into equal width buckets.
type HistogramInt64 struct {
	AverageInt64
	histogram []int64
	// setup
	from  int64
	till  int64
	width int64
}

// NewhistorgramInt64 return a new histogram object, samples below
// `from` and above `till` fall into the two boundary buckets.
func NewhistorgramInt64(from, till, width int64) *HistogramInt64 {
	from = (from / width) * width
	till = (till / width) * width
	h := &HistogramInt64{from: from, till: till, width: width}
	h.histogram = make([]int64, 1+((till-from)/width)+1)
	return h
}

// Add a sample to this histogram.
func (h *HistogramInt64) Add(sample int64) {
	h.AverageInt64.Add(sample)
	if sample < h.from {
		h.histogram[0]++
	} else if sample >= h.till {
		h.histogram[len(h.histogram)-1]++
	} else {
		h.histogram[((sample-h.from)/h.width)+1]++
	}
}

// Stats return a map of bucket-value and sample count.
func (h *HistogramInt64) Stats() map[string]int64 {
	m := make(map[string]int64)
	for i, count := range h.histogram {
		if count == 0 {
			continue
		}
		if i == 0 {
			m[fmt.Sprintf("-%v", h.from)] = count
		} else if i == len(h.histogram)-1 {
			m[fmt.Sprintf("+%v", h.till)] = count
		} else {
			m[fmt.Sprintf("%v", h.from+(int64(i)*h.width))] = count
		}
	}
	return m
}

// Merge another histogram of same shape into this one.
func (h *HistogramInt64) Merge(other *HistogramInt64) {
	if h.from != other.from || h.till != other.till || h.width != other.width {
		panic("histogram shapes don't match")
	}
	h.AverageInt64.Merge(&other.AverageInt64)
	for i, count := range other.histogram {
		h.histogram[i] += count
	}
}

// Clone copies the entire instance.
func (h *HistogramInt64) Clone() *HistogramInt64 {
	newh := *h
	newh.histogram = make([]int64, len(h.histogram))
	copy(newh.histogram, h.histogram)
	return &newh
}

// Logstring return Stats() as a single formatted line, buckets in
// ascending order.
func (h *HistogramInt64) Logstring() string {
	stats := h.Stats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ss := make([]string, 0, len(keys))
	for _, k := range keys {
		ss = append(ss, fmt.Sprintf("%v:%v", k, stats[k]))
	}
	return fmt.Sprintf("{%v}", strings.Join(ss, ", "))
}
