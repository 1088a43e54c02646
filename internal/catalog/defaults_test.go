package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"contractpilot/internal/model"
)

func TestSynthesizeDefaults_OneAnswerPerKey(t *testing.T) {
	reqs := []model.Requirements{
		{},
		{NumberOfBidders: "1"},
		{NumberOfBidders: "4+", ServiceCriticality: "mission-critical", WalkAwayPoint: "$2M"},
	}
	for _, req := range reqs {
		for _, mode := range []model.Mode{model.ModeFull, model.ModeAbbreviated, model.ModeFastTrack} {
			keys := Keys(BuildQuestionSet(mode, req))
			answers := SynthesizeDefaults(req, keys)

			assert.Len(t, answers, len(keys))
			for _, k := range keys {
				a, ok := answers[k]
				assert.True(t, ok, "missing default for %s", k)
				assert.False(t, a.IsEmpty(), "empty default for %s", k)
			}
		}
	}
}

func TestSynthesizeDefaults_UnknownKeyGetsPlaceholder(t *testing.T) {
	answers := SynthesizeDefaults(model.Requirements{}, []string{"future_question"})
	assert.Equal(t, model.Answers{"future_question": {Text: fallbackDefault}}, answers)
}

func TestSynthesizeDefaults_BackupPlanReflectsBidders(t *testing.T) {
	multi := SynthesizeDefaults(model.Requirements{NumberOfBidders: "4"}, []string{KeyBackupPlan})
	assert.Contains(t, multi[KeyBackupPlan].Text, "other 3 bidders")

	single := SynthesizeDefaults(model.Requirements{NumberOfBidders: "Single Source"}, []string{KeyBackupPlan})
	assert.Contains(t, single[KeyBackupPlan].Text, "Limited alternatives")
}

func TestSynthesizeDefaults_Criticality(t *testing.T) {
	keys := []string{KeyRiskTolerance, KeyKeyRisks, KeyRelationshipGoal}

	critical := SynthesizeDefaults(model.Requirements{ServiceCriticality: "Mission-critical"}, keys)
	assert.Equal(t, "Low", critical[KeyRiskTolerance].SelectedOption)
	assert.Equal(t, "Strategic alliance", critical[KeyRelationshipGoal].SelectedOption)

	for _, c := range []string{"Non-critical", "not critical", "Nice to have"} {
		answers := SynthesizeDefaults(model.Requirements{ServiceCriticality: c}, keys)
		assert.Equal(t, "Medium", answers[KeyRiskTolerance].SelectedOption, c)
		assert.Equal(t, "Delivery delays and cost overruns", answers[KeyKeyRisks].Text, c)
		assert.Equal(t, "Long-term partnership", answers[KeyRelationshipGoal].SelectedOption, c)
	}
}

func TestSynthesizeDefaults_DefaultsAreValidAnswers(t *testing.T) {
	req := model.Requirements{NumberOfBidders: "2-3", AlternativeOptions: "strong", InHouseCapability: "none at all"}
	keys := Keys(BuildQuestionSet(model.ModeFull, req))
	answers := SynthesizeDefaults(req, keys)

	for _, k := range keys {
		q, _ := Lookup(k)
		_, ok := NormalizeAnswer(q, answers[k])
		assert.True(t, ok, "default for %s does not validate", k)
	}
	assert.Equal(t, "Strong", answers[KeyAlternativeOptions].SelectedOption)
	assert.Equal(t, "None", answers[KeyInHouseCapability].SelectedOption)
}

func TestNormalizeAnswer(t *testing.T) {
	scale, _ := Lookup(KeyBATNAConfidence)
	choice, _ := Lookup(KeyAlternativeOptions)
	text, _ := Lookup(KeyBackupPlan)

	tests := []struct {
		name   string
		q      model.StrategicQuestion
		in     model.Answer
		want   model.Answer
		wantOK bool
	}{
		{"rating", scale, model.Answer{Rating: 7}, model.Answer{Rating: 7}, true},
		{"numeric text", scale, model.Answer{Text: "9"}, model.Answer{Rating: 9}, true},
		{"rating too high", scale, model.Answer{Rating: 11}, model.Answer{}, false},
		{"rating zero", scale, model.Answer{Text: "0"}, model.Answer{}, false},
		{"non numeric", scale, model.Answer{Text: "very"}, model.Answer{}, false},
		{"option case-insensitive", choice, model.Answer{SelectedOption: "strong"}, model.Answer{SelectedOption: "Strong"}, true},
		{"option via text", choice, model.Answer{Text: "None"}, model.Answer{SelectedOption: "None"}, true},
		{"option prefix", choice, model.Answer{SelectedOption: "Some - one fallback vendor"}, model.Answer{SelectedOption: "Some"}, true},
		{"unknown option", choice, model.Answer{SelectedOption: "Maybe"}, model.Answer{}, false},
		{"text trimmed", text, model.Answer{Text: "  re-tender  "}, model.Answer{Text: "re-tender"}, true},
		{"blank text", text, model.Answer{Text: "   "}, model.Answer{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeAnswer(tt.q, tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
