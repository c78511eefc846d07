package chance

import "sync"

// Scripted replays fixed values, which lets tests walk a specific branch.
// When a queue runs dry it falls back to the highest value that never
// triggers an "unlikely" branch: IntN returns n-1 and Float64 returns 0.999.
type Scripted struct {
	mu     sync.Mutex
	Ints   []int
	Floats []float64
}

// IntN pops the next scripted int, reduced modulo n.
func (s *Scripted) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Ints) == 0 {
		return n - 1
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	if v < 0 {
		v = -v
	}
	return v % n
}

// Float64 pops the next scripted float.
func (s *Scripted) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Floats) == 0 {
		return 0.999
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}
