package risk

// QuestThreshold is the raw slider value a rule must exceed to fire.
const QuestThreshold = 60

type questRule struct {
	feature string
	quests  [2]string
}

// Rules fire in this order and compare the unscaled slider index.
var questRules = []questRule{
	{feature: "bmi", quests: [2]string{"Walk 30 mins/day 🏃‍♀️", "Swap sugary snacks with fruits 🍎"}},
	{feature: "bp", quests: [2]string{"Reduce salt 🍲", "10 mins meditation/day 🧘‍♀️"}},
	{feature: "s1", quests: [2]string{"Avoid fried food 🍟", "Eat fiber rich meals 🥬"}},
	{feature: "s5", quests: [2]string{"Replace soda with water 🚰", "Avoid late-night meals 🌙"}},
	{feature: "s6", quests: [2]string{"Consistent meal timing ⏱️", "Short walks after meals 🚶‍♀️"}},
	{feature: "age", quests: [2]string{"Regular checkups 👩‍⚕️", "Strength exercises 2–3x/week 💪"}},
}

var defaultQuests = [2]string{"8k steps/day 👟", "8 glasses of water 💧"}

// LifestyleQuests returns the suggestions for every slider above
// QuestThreshold, or the default pair when none are.
func LifestyleQuests(in SliderInput) []string {
	var quests []string
	for _, rule := range questRules {
		if in.get(rule.feature) > QuestThreshold {
			quests = append(quests, rule.quests[:]...)
		}
	}
	if len(quests) == 0 {
		return []string{defaultQuests[0], defaultQuests[1]}
	}
	return quests
}
