// Package guard decides whether a caller may reach a protected route. The
// decisions are pure so the HTTP middleware and the session endpoint agree.
package guard

const (
	RouteEntry     = "/"
	RouteOTP       = "/otp-verification"
	RouteDashboard = "/dashboard"
)

type Outcome int

const (
	Allow Outcome = iota
	// Wait means the session is still loading; no decision yet.
	Wait
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Wait:
		return "wait"
	default:
		return "redirect"
	}
}

type Decision struct {
	Outcome Outcome `json:"-"`
	Result  string  `json:"result"`
	Route   string  `json:"route,omitempty"`
}

type Input struct {
	Loading        bool
	Authenticated  bool
	StepUpVerified bool
	Role           string
}

func decide(o Outcome, route string) Decision {
	return Decision{Outcome: o, Result: o.String(), Route: route}
}

// StepUp gates account pages behind the one-time-code check.
func StepUp(in Input) Decision {
	switch {
	case in.Loading:
		return decide(Wait, "")
	case !in.Authenticated:
		return decide(Redirect, RouteEntry)
	case !in.StepUpVerified:
		return decide(Redirect, RouteOTP)
	default:
		return decide(Allow, "")
	}
}

// Admin gates the console behind role == admin.
func Admin(in Input) Decision {
	switch {
	case in.Loading:
		return decide(Wait, "")
	case !in.Authenticated:
		return decide(Redirect, RouteEntry)
	case in.Role != "admin":
		return decide(Redirect, RouteDashboard)
	default:
		return decide(Allow, "")
	}
}
