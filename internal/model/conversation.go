package model

// Input is one message from a user as seen by the core, independent of transport.
type Input struct {
	UserID int64
	Text   string
	// Choice marks a structured selection (inline button) rather than typed text.
	Choice bool
}

// Choice is one option the transport should render as a button.
type Choice struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Reply is the text (and optional choices) sent back to the user.
type Reply struct {
	Text    string   `json:"text"`
	Choices []Choice `json:"choices,omitempty"`
}

// TextReply builds a reply without choices.
func TextReply(text string) Reply { return Reply{Text: text} }

// WaterEntry reports a water logging result.
type WaterEntry struct {
	Amount    int
	Total     int
	Goal      int
	Remaining int // positive: left to drink, negative: overshoot
}

// CaloriesEntry reports a food logging result.
type CaloriesEntry struct {
	Consumed float64
	Total    float64
}

// WorkoutEntry reports a workout logging result.
type WorkoutEntry struct {
	Type        string
	Minutes     int
	Burned      float64
	TotalBurned float64
	ExtraWater  int
	WaterGoal   int
}

// Progress is today's standing against the goals.
type Progress struct {
	Profile           Profile  `json:"profile"`
	Log               DailyLog `json:"log"`
	RemainingWater    int      `json:"remaining_water"`
	RemainingCalories float64  `json:"remaining_calories"`
}
