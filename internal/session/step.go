package session

// Step is a position in the mockup wizard.
type Step int

const (
	AwaitingBaseImage Step = iota
	AwaitingLogoImage
	AwaitingDescription
	Generating
	ShowingResult
)

// StepCount is the number of wizard steps.
const StepCount = int(ShowingResult) + 1

var stepLabels = [StepCount]string{
	"Base image",
	"Logo",
	"Description",
	"Generating",
	"Result",
}

func (s Step) String() string {
	if !s.Valid() {
		return "Unknown"
	}
	return stepLabels[s]
}

// Valid reports whether s is one of the five steps.
func (s Step) Valid() bool {
	return s >= AwaitingBaseImage && s <= ShowingResult
}

// Index returns the zero-based position, used by the step indicator.
func (s Step) Index() int {
	return int(s)
}

// Editable reports whether inputs may still change at this step.
func (s Step) Editable() bool {
	return s < Generating
}
