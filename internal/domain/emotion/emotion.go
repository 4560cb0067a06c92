package emotion

import "strings"

// Category is a lexical emotion tag detected in a line of text.
type Category string

const (
	CategoryJoy      Category = "joy"
	CategorySadness  Category = "sadness"
	CategoryUrgency  Category = "urgency"
	CategoryCalmness Category = "calmness"
)

type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)

// Signal is the classification of one line's emotional content. Categories are
// non-exclusive, a line may carry none or several.
type Signal struct {
	Categories []Category `json:"categories"`
	Intensity  Intensity  `json:"intensity"`
	Tone       Tone       `json:"tone"`
}

// Has reports whether the signal carries the given category.
func (s Signal) Has(category Category) bool {
	for _, c := range s.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Neutral is the signal returned when no markers match.
func Neutral() Signal {
	return Signal{Intensity: IntensityMedium, Tone: ToneNeutral}
}

var lexicon = []struct {
	category Category
	markers  []string
}{
	{CategoryJoy, []string{
		"haha", "lol", "great", "awesome", "love", "happy", "amazing",
		"wonderful", "excited", "fantastic", "yay", "congrats",
	}},
	{CategorySadness, []string{
		"sad", "sorry", "unfortunately", "miss you", "terrible", "awful",
		"crying", "upset", "disappointed",
	}},
	{CategoryUrgency, []string{
		"urgent", "asap", "now", "hurry", "quickly", "emergency",
		"immediately", "right away", "deadline",
	}},
	{CategoryCalmness, []string{
		"relax", "calm", "no rush", "whenever", "take your time",
		"peaceful", "no worries", "easy",
	}},
}

// Analyze classifies text by lexical marker matching. Deterministic, never
// fails, returns a neutral medium-intensity signal when nothing matches.
func Analyze(text string) Signal {
	lowered := strings.ToLower(text)
	words := fieldSet(lowered)

	signal := Neutral()
	for _, entry := range lexicon {
		for _, marker := range entry.markers {
			if matches(lowered, words, marker) {
				signal.Categories = append(signal.Categories, entry.category)
				break
			}
		}
	}

	// Tone derives from the positive/negative categories. Positive wins when
	// both are present.
	switch {
	case signal.Has(CategoryJoy):
		signal.Tone = TonePositive
	case signal.Has(CategorySadness):
		signal.Tone = ToneNegative
	}

	return signal
}

// matches checks multi-word markers by substring and single words against the
// tokenized text, so "now" does not fire on "know".
func matches(lowered string, words map[string]bool, marker string) bool {
	if strings.ContainsRune(marker, ' ') {
		return strings.Contains(lowered, marker)
	}
	return words[marker]
}

func fieldSet(lowered string) map[string]bool {
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
