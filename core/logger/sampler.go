package logger

import "sync/atomic"

// sampler passes one call in every n. n <= 1 passes everything.
type sampler struct {
	every atomic.Int64
	seen  atomic.Int64
}

func newSampler(n int) *sampler {
	s := &sampler{}
	s.reset(n)
	return s
}

func (s *sampler) reset(n int) {
	s.every.Store(int64(n))
	s.seen.Store(0)
}

func (s *sampler) allow() bool {
	n := s.every.Load()
	if n <= 1 {
		return true
	}
	return (s.seen.Add(1)-1)%n == 0
}
