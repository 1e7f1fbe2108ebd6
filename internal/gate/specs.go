package gate

import "sort"

// #region built-in-specs
// DecisionGravity decides whether a decision is weighty enough for reflection.
var DecisionGravity = Spec{
	Name:       "decision-gravity",
	ScoreField: "gravity_score",
	Threshold:  0.5,
	PassLabel:  "PROCEED",
	FailLabel:  "REFUSE",
	Dimensions: [3]Dimension{
		{Name: "irreversibility", Weight: 0.95},
		{Name: "life_impact", Weight: 0.98},
		{Name: "temporal_consequence", Weight: 0.92},
	},
	ArtifactFile: "decision_gravity_model.json.zst",
}

// QuestionDepth screens the user's questions during the reflection arc.
var QuestionDepth = Spec{
	Name:       "question-depth",
	ScoreField: "depth_score",
	Threshold:  0.6,
	PassLabel:  "PROCEED",
	FailLabel:  "REJECT",
	Dimensions: [3]Dimension{
		{Name: "specificity", Weight: 0.95},
		{Name: "introspective_depth", Weight: 0.98},
		{Name: "non_leading", Weight: 0.92},
	},
	HasRejectionGuidance: true,
	MissingTextGuidance:  "Please provide a question.",
	ArtifactFile:         "question_depth_model.json.zst",
}

// ConsequenceDepth checks generated reflections before delivery.
var ConsequenceDepth = Spec{
	Name:       "consequence-depth",
	ScoreField: "consequence_depth_score",
	Threshold:  0.5,
	PassLabel:  "APPROVE",
	FailLabel:  "TERMINATE",
	Dimensions: [3]Dimension{
		{Name: "emotional_specificity", Weight: 0.95},
		{Name: "concrete_reasoning", Weight: 0.92},
		{Name: "narrative_depth", Weight: 0.98},
	},
	ArtifactFile: "consequence_depth_model.json.zst",
}

var builtin = map[string]Spec{
	DecisionGravity.Name:  DecisionGravity,
	QuestionDepth.Name:    QuestionDepth,
	ConsequenceDepth.Name: ConsequenceDepth,
}

// #endregion built-in-specs

// #region lookup
// ByName returns the built-in spec for a gate name.
func ByName(name string) (Spec, bool) {
	s, ok := builtin[name]
	return s, ok
}

// Specs returns the built-in specs sorted by name.
func Specs() []Spec {
	out := make([]Spec, 0, len(builtin))
	for _, s := range builtin {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// #endregion lookup
