package handik

// JointSample is a single 3D landmark of a tracked hand.
type JointSample struct {
	ID   int     `json:"id"`
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// HandSnapshot maps a hand label (e.g. "left_hand") to its ordered joints.
type HandSnapshot map[string][]JointSample

// DefaultHandLabel is the label used by ValidateHand.
const DefaultHandLabel = "left_hand"

// handPayload mirrors a single hand inside the /validate request body.
type handPayload struct {
	Points []JointSample `json:"points"`
}

// validateRequest mirrors the /validate request body.
type validateRequest struct {
	Hands map[string]handPayload `json:"hands"`
}

func newValidateRequest(snapshot HandSnapshot) validateRequest {
	hands := make(map[string]handPayload, len(snapshot))
	for label, points := range snapshot {
		if points == nil {
			points = []JointSample{}
		}
		hands[label] = handPayload{Points: points}
	}
	return validateRequest{Hands: hands}
}

// ValidationReport mirrors the payload returned by /validate.
type ValidationReport struct {
	Results      map[string]ValidationOutcome `json:"validation_results"`
	OverallValid bool                         `json:"overall_valid"`
}

// Outcome returns the result for label when the server reported one.
func (r *ValidationReport) Outcome(label string) (ValidationOutcome, bool) {
	if r == nil {
		return ValidationOutcome{}, false
	}
	outcome, ok := r.Results[label]
	return outcome, ok
}

// ValidationOutcome is the per-hand verdict.
type ValidationOutcome struct {
	IsValid    bool      `json:"is_valid"`
	Violations []string  `json:"violations"`
	IKResult   *IKAngles `json:"ik_results,omitempty"`
}

// IKAngles carries per-finger joint angles. A nil slice means the solver did
// not resolve that finger.
type IKAngles struct {
	Thumb    []float64 `json:"thumb,omitempty"`
	Index    []float64 `json:"index,omitempty"`
	Middle   []float64 `json:"middle,omitempty"`
	Ring     []float64 `json:"ring,omitempty"`
	Little   []float64 `json:"little,omitempty"`
	PlotPath *string   `json:"plot_path,omitempty"`
}

// FingerAngles pairs a finger name with its resolved angles.
type FingerAngles struct {
	Finger string
	Angles []float64
}

// Fingers returns the resolved fingers in thumb-to-little order.
func (a *IKAngles) Fingers() []FingerAngles {
	if a == nil {
		return nil
	}
	var out []FingerAngles
	for _, f := range []FingerAngles{
		{"thumb", a.Thumb},
		{"index", a.Index},
		{"middle", a.Middle},
		{"ring", a.Ring},
		{"little", a.Little},
	} {
		if f.Angles != nil {
			out = append(out, f)
		}
	}
	return out
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}
