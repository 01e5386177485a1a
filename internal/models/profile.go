package models

// RunnerProfile is the race state of a runner. Missing parts are null.
type RunnerProfile struct {
	Ranking       *Ranking       `json:"ranking"`
	Package       *UserPackage   `json:"package"`
	ManualPayment *ManualPayment `json:"manual_payment"`
}

type Profile struct {
	User
	Runner *RunnerProfile `json:"runner,omitempty"`
}
