package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		categories []Category
		tone       Tone
	}{
		{
			name:       "joy markers set positive tone",
			text:       "haha that was awesome!",
			categories: []Category{CategoryJoy},
			tone:       TonePositive,
		},
		{
			name:       "sadness markers set negative tone",
			text:       "Sorry to hear that, so sad",
			categories: []Category{CategorySadness},
			tone:       ToneNegative,
		},
		{
			name:       "urgency without tone words stays neutral",
			text:       "need this ASAP, it's urgent",
			categories: []Category{CategoryUrgency},
			tone:       ToneNeutral,
		},
		{
			name:       "multi-word calm marker",
			text:       "take your time with it",
			categories: []Category{CategoryCalmness},
			tone:       ToneNeutral,
		},
		{
			name:       "positive wins over negative",
			text:       "sad news but I love the plan",
			categories: []Category{CategoryJoy, CategorySadness},
			tone:       TonePositive,
		},
		{
			name: "no markers",
			text: "the meeting is on Tuesday",
			tone: ToneNeutral,
		},
		{
			name: "empty text",
			text: "",
			tone: ToneNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := Analyze(tt.text)
			assert.Equal(t, tt.categories, signal.Categories)
			assert.Equal(t, tt.tone, signal.Tone)
			assert.Equal(t, IntensityMedium, signal.Intensity)
		})
	}
}

func TestAnalyze_WordBoundary(t *testing.T) {
	// "know" must not trigger the urgency marker "now"
	signal := Analyze("I know the answer")
	assert.False(t, signal.Has(CategoryUrgency))
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := Analyze("hurry, no rush, haha")
	b := Analyze("hurry, no rush, haha")
	assert.Equal(t, a, b)
}
