package booking

// Step is one screen of the booking wizard.
type Step string

const (
	StepService  Step = "service"
	StepLocation Step = "location"
	StepStylist  Step = "stylist"
	StepDateTime Step = "datetime"
	StepDetails  Step = "details"
	StepConfirm  Step = "confirm"

	// StepBooked is the terminal confirmation state. It is entered only after
	// a successful submission and is not part of the ordered sequence.
	StepBooked Step = "booked"
)

// Steps is the fixed wizard order. There is no skipping and no branching.
var Steps = []Step{StepService, StepLocation, StepStylist, StepDateTime, StepDetails, StepConfirm}

// InitialStep is where every wizard starts.
const InitialStep = StepService

// Index returns the position of s in Steps, or -1 for StepBooked and unknown
// values.
func (s Step) Index() int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the six sequenced steps or StepBooked.
func (s Step) Valid() bool {
	return s == StepBooked || s.Index() >= 0
}

// CanLeave evaluates the guard that must hold to move forward from step. It
// reads only d, so removing data re-fails the guard on the next call.
func CanLeave(step Step, d Draft) bool {
	switch step {
	case StepService:
		return len(d.Services) > 0
	case StepLocation:
		return d.LocationID != ""
	case StepStylist:
		return d.StylistID != "" || d.StylistName == FirstAvailable
	case StepDateTime:
		return d.Date != nil && d.Time != ""
	case StepDetails:
		return d.ClientName != "" && d.ClientEmail != "" && d.ClientPhone != ""
	case StepConfirm:
		return true
	default:
		return false
	}
}

// Next returns the step after current when its guard holds. The second result
// is false when the wizard stays put: the guard failed, current is confirm
// (which only leaves by submitting), or current is not a sequenced step.
func Next(current Step, d Draft) (Step, bool) {
	i := current.Index()
	if i < 0 || i == len(Steps)-1 {
		return current, false
	}
	if !CanLeave(current, d) {
		return current, false
	}
	return Steps[i+1], true
}

// Back returns the step before current. It is unconditional from every
// sequenced step except the first; StepBooked has no way back.
func Back(current Step) (Step, bool) {
	i := current.Index()
	if i <= 0 {
		return current, false
	}
	return Steps[i-1], true
}

// ReadyToSubmit reports whether every guard before confirm holds for d.
func ReadyToSubmit(d Draft) bool {
	for _, step := range Steps {
		if !CanLeave(step, d) {
			return false
		}
	}
	return true
}
