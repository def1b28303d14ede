package analysis

// State is the solution state: the current pressure field and the number of
// steps taken. Only the transient analysis advances it.
type State struct {
	pressure []float64
	step     int
	time     float64
}

// NewState broadcasts a uniform initial pressure to n cells.
func NewState(n int, initial float64) *State {
	p := make([]float64, n)
	for i := range p {
		p[i] = initial
	}
	return &State{pressure: p}
}

// Pressure returns a copy of the current field.
func (s *State) Pressure() []float64 {
	out := make([]float64, len(s.pressure))
	copy(out, s.pressure)
	return out
}

func (s *State) Step() int { return s.step }

func (s *State) Time() float64 { return s.time }

func (s *State) advance(next []float64, dt float64) {
	copy(s.pressure, next)
	s.step++
	s.time += dt
}
