package train

import (
	"github.com/danielpatrickdp/fcs-gates/internal/gate"
	"github.com/danielpatrickdp/fcs-gates/internal/textmodel"
)

// #region profile
// Profile holds everything needed to train one gate's classifier.
type Profile struct {
	Spec         gate.Spec
	LabelFile    string // default JSONL file under the data dir
	NegativeName string
	PositiveName string
	Vectorizer   textmodel.VectorizerConfig
	Logistic     textmodel.LogisticConfig
	SampleTexts  []string
	// KeepRejections writes question_rejection_guidance.json next to the model.
	KeepRejections bool
}

// #endregion profile

// #region profiles
var profiles = map[string]Profile{
	gate.DecisionGravity.Name: {
		Spec:         gate.DecisionGravity,
		LabelFile:    "decision_gravity_labels.jsonl",
		NegativeName: "Trivial",
		PositiveName: "Weighty",
		Vectorizer:   textmodel.VectorizerConfig{MaxFeatures: 5000, NgramMin: 1, NgramMax: 3, MinDF: 1},
		Logistic:     textmodel.DefaultLogisticConfig(),
		SampleTexts: []string{
			"Should I get coffee or tea this morning",
			"I'm considering leaving my 15-year career to start my own company",
			"I'm thinking about what to watch on Netflix tonight",
			"Should I end my marriage after 10 years together",
		},
	},
	gate.QuestionDepth.Name: {
		Spec:         gate.QuestionDepth,
		LabelFile:    "question_depth_labels.jsonl",
		NegativeName: "Shallow",
		PositiveName: "Deep",
		Vectorizer:   textmodel.VectorizerConfig{MaxFeatures: 5000, NgramMin: 1, NgramMax: 3, MinDF: 1},
		Logistic:     textmodel.DefaultLogisticConfig(),
		SampleTexts: []string{
			"Will I be happy?",
			"What might I find myself thinking about in quiet moments?",
			"Should I do this?",
			"How might my sense of identity have shifted in ways I didn't anticipate?",
		},
		KeepRejections: true,
	},
	gate.ConsequenceDepth.Name: {
		Spec:         gate.ConsequenceDepth,
		LabelFile:    "consequence_depth_labels.jsonl",
		NegativeName: "Shallow",
		PositiveName: "Deep",
		Vectorizer:   textmodel.VectorizerConfig{MaxFeatures: 8000, NgramMin: 1, NgramMax: 4, MinDF: 1},
		Logistic:     textmodel.DefaultLogisticConfig(),
		SampleTexts: []string{
			"I might feel different about things.",
			"Looking back, I might find myself feeling a quiet sense of loss on Sunday mornings—those were the times we used to spend together, and now the silence feels heavier than I expected.",
			"Things could be okay.",
			"Perhaps I've discovered that grief doesn't arrive all at once—it seeps in through the cracks of ordinary moments.",
		},
	},
}

// ProfileFor returns the training profile for a gate name.
func ProfileFor(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// #endregion profiles
