package risk

// Level is a gamified risk tier.
type Level struct {
	Title   string `json:"title"`
	Color   string `json:"color"`
	Message string `json:"message"`
}

type tier struct {
	below float64
	level Level
}

// Tiers in ascending order; the first whose bound exceeds the score wins.
var tiers = []tier{
	{below: 30, level: Level{Title: "Health Rookie 🌱", Color: "green", Message: "Great start! Maintain consistency!"}},
	{below: 60, level: Level{Title: "Balance Seeker ⚖️", Color: "yellow", Message: "Some tweaks will level you up fast!"}},
	{below: 80, level: Level{Title: "Risk Ranger 🔥", Color: "orange", Message: "Time to improve lifestyle habits!"}},
}

var topLevel = Level{Title: "Boss Level Alert 🚨", Color: "red", Message: "High risk! Please consider medical guidance."}

// GamifiedLevel maps a score to its tier with bands at 30, 60 and 80.
func GamifiedLevel(score float64) Level {
	for _, t := range tiers {
		if score < t.below {
			return t.level
		}
	}
	return topLevel
}

// Levels lists every tier from lowest to highest.
func Levels() []Level {
	out := make([]Level, 0, len(tiers)+1)
	for _, t := range tiers {
		out = append(out, t.level)
	}
	return append(out, topLevel)
}
