package journey

import "fmt"

// FlowRegistry defines the fixed stage sequence for each journey type.
// These sequences are process-wide constants: a journey's legal stages
// are exactly the members of its type's flow, in this order.
var FlowRegistry = map[Type][]Stage{
	TypeFeaturePlanning: {
		StageIntake, StageSpeccing, StageUIPlanning, StagePlanning, StageReview, StageApproved,
	},
	TypeFeature: {
		StageReviewAndEditPlan, StageImplementing, StageTesting, StagePreProdReview,
		StageMergeApproved, StageStagingQA, StageDeployed,
	},
	TypeInvestigation: {
		StageInProgress, StageComplete,
	},
	TypeBug: {
		StageReported, StageInvestigating, StageFixing,
	},
}

// StageFlow returns the ordered list of stages for the given journey type.
// Returns an error if the type is not recognized.
func StageFlow(t Type) ([]Stage, error) {
	if err := ValidateType(t); err != nil {
		return nil, err
	}

	flow, ok := FlowRegistry[t]
	if !ok {
		return nil, fmt.Errorf("no flow defined for type %q", t)
	}

	// Return a copy to prevent mutation of the registry.
	result := make([]Stage, len(flow))
	copy(result, flow)
	return result, nil
}

// InitialStage returns the first stage of the flow for the given type.
func InitialStage(t Type) (Stage, error) {
	flow, err := StageFlow(t)
	if err != nil {
		return "", err
	}
	return flow[0], nil
}

// ValidateStage returns an error if the stage is not a member of the
// flow associated with the journey type.
func ValidateStage(t Type, s Stage) error {
	flow, err := StageFlow(t)
	if err != nil {
		return err
	}
	for _, stage := range flow {
		if stage == s {
			return nil
		}
	}
	return fmt.Errorf("stage %q is not valid for journey type %q", s, t)
}

// StageIndex returns the ordinal position of the stage within the type's
// flow, or -1 if the stage does not belong to the flow.
func StageIndex(t Type, s Stage) int {
	flow, err := StageFlow(t)
	if err != nil {
		return -1
	}
	for i, stage := range flow {
		if stage == s {
			return i
		}
	}
	return -1
}

// Progress returns completion as a fraction in (0, 1]:
// (index+1) / flow length. Returns 0 for an unknown stage.
func Progress(t Type, s Stage) float64 {
	flow, err := StageFlow(t)
	if err != nil {
		return 0
	}
	idx := StageIndex(t, s)
	if idx < 0 {
		return 0
	}
	return float64(idx+1) / float64(len(flow))
}

// NextStage returns the stage after s in the type's flow.
// There is no wrap-around: at the final stage, ok is false.
func NextStage(t Type, s Stage) (next Stage, ok bool) {
	flow, err := StageFlow(t)
	if err != nil {
		return "", false
	}
	idx := StageIndex(t, s)
	if idx < 0 || idx >= len(flow)-1 {
		return "", false
	}
	return flow[idx+1], true
}

// PrevStage returns the stage before s in the type's flow.
// There is no wrap-around: at the initial stage, ok is false.
func PrevStage(t Type, s Stage) (prev Stage, ok bool) {
	idx := StageIndex(t, s)
	if idx <= 0 {
		return "", false
	}
	flow, _ := StageFlow(t)
	return flow[idx-1], true
}

// IsFinalStage reports whether s is the last stage of the type's flow.
func IsFinalStage(t Type, s Stage) bool {
	flow, err := StageFlow(t)
	if err != nil {
		return false
	}
	return StageIndex(t, s) == len(flow)-1
}
