// MIT License

// Copyright (c) 2023 wetrycode

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package vmwiz

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// codeStatusName http status code ranges that get a counter
var codeStatusName = [][]int{{100, 103}, {200, 226}, {300, 308}, {400, 451}, {500, 511}}

const (
	// RequestStats requests sent to the backend
	RequestStats string = "requests"
	// FailureStats requests that never got a response
	FailureStats string = "failures"
	// SessionExpiredStats 401 responses carrying a redirect target
	SessionExpiredStats string = "session_expired"
	// NoRedirectStats 401 responses without a redirect target
	NoRedirectStats string = "no_redirect"
)

// StatisticInterface gateway call counters
type StatisticInterface interface {
	// Incr add one to the metric
	Incr(metric string)
	// Get current value of the metric
	Get(metric string) uint64
	// GetAllStats all metrics that have been touched
	GetAllStats() map[string]uint64
	// ObserveDelay record the duration of one call
	ObserveDelay(seconds float64)
	// AverageDelay mean call duration in seconds
	AverageDelay() float64
}

// DefaultStatistic in memory statistic
type DefaultStatistic struct {
	Metrics  map[string]*uint64
	register sync.Map
	// delayMicros total observed delay in microseconds
	delayMicros uint64
	delayCount  uint64
}

// NewDefaultStatistic default statistic constructor
func NewDefaultStatistic() *DefaultStatistic {
	m := map[string]*uint64{
		RequestStats:        new(uint64),
		FailureStats:        new(uint64),
		SessionExpiredStats: new(uint64),
		NoRedirectStats:     new(uint64),
	}
	for _, status := range codeStatusName {
		min, max := status[0], status[1]
		for i := min; i <= max; i++ {
			m[strconv.Itoa(i)] = new(uint64)
		}
	}
	return &DefaultStatistic{
		Metrics:  m,
		register: sync.Map{},
	}
}

// Incr unknown metrics are ignored
func (s *DefaultStatistic) Incr(metric string) {
	v, ok := s.Metrics[metric]
	if !ok {
		return
	}
	atomic.AddUint64(v, 1)
	s.register.Store(metric, true)
}

func (s *DefaultStatistic) Get(metric string) uint64 {
	v, ok := s.Metrics[metric]
	if !ok {
		return 0
	}
	return atomic.LoadUint64(v)
}

func (s *DefaultStatistic) GetAllStats() map[string]uint64 {
	result := make(map[string]uint64)
	s.register.Range(func(key any, _ any) bool {
		k := key.(string)
		result[k] = s.Get(k)
		return true
	})
	return result
}

func (s *DefaultStatistic) ObserveDelay(seconds float64) {
	if seconds < 0 {
		return
	}
	atomic.AddUint64(&s.delayMicros, uint64(seconds*1e6))
	atomic.AddUint64(&s.delayCount, 1)
}

// AverageDelay rounded to milliseconds
func (s *DefaultStatistic) AverageDelay() float64 {
	count := atomic.LoadUint64(&s.delayCount)
	if count == 0 {
		return 0
	}
	total := decimal.NewFromInt(int64(atomic.LoadUint64(&s.delayMicros)))
	return total.Div(decimal.NewFromInt(int64(count))).Div(decimal.NewFromInt(1e6)).Round(3).InexactFloat64()
}
