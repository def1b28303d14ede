package util

import "fmt"

type IntegrationMethod int

const (
	ImplicitMethod IntegrationMethod = iota + 1 // Backward Euler, theta = 1
	ExplicitMethod                              // Forward Euler, theta = 0
	MixedMethod                                 // Theta method, 0.5 = Crank-Nicolson
)

func (m IntegrationMethod) String() string {
	switch m {
	case ImplicitMethod:
		return "implicit"
	case ExplicitMethod:
		return "explicit"
	case MixedMethod:
		return "mixed method"
	default:
		return fmt.Sprintf("IntegrationMethod(%d)", int(m))
	}
}

// Scheme is the time integration scheme. Every method reduces to a single
// blending weight theta between the new (implicit) and old (explicit) level.
type Scheme struct {
	Method IntegrationMethod
	theta  float64
}

func Implicit() Scheme { return Scheme{Method: ImplicitMethod, theta: 1} }

func Explicit() Scheme { return Scheme{Method: ExplicitMethod, theta: 0} }

func Mixed(theta float64) Scheme { return Scheme{Method: MixedMethod, theta: theta} }

func (s Scheme) Theta() float64 { return s.theta }

// NeedsSolve reports whether a step requires a linear solve.
func (s Scheme) NeedsSolve() bool { return s.theta > 0 }

func (s Scheme) Valid() bool {
	switch s.Method {
	case ImplicitMethod, ExplicitMethod, MixedMethod:
		return s.theta >= 0 && s.theta <= 1
	}
	return false
}

func (s Scheme) String() string {
	if s.Method == MixedMethod {
		return fmt.Sprintf("mixed method (theta=%g)", s.theta)
	}
	return s.Method.String()
}

// GetThetaCoeffs returns the weights applied to the flow term at the new and
// old time levels.
func GetThetaCoeffs(s Scheme) (implicit, explicit float64) {
	return s.theta, 1 - s.theta
}
