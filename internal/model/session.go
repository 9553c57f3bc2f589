package model

import "time"

// Step is a position inside a conversational flow.
type Step string

// Profile flow steps, in order.
const (
	StepAwaitingWeight          Step = "awaiting_weight"
	StepAwaitingHeight          Step = "awaiting_height"
	StepAwaitingAge             Step = "awaiting_age"
	StepAwaitingGender          Step = "awaiting_gender"
	StepAwaitingActivity        Step = "awaiting_activity"
	StepAwaitingCity            Step = "awaiting_city"
	StepAwaitingCalorieOverride Step = "awaiting_calorie_override"
	StepComplete                Step = "complete"
)

// Food flow steps.
const (
	StepAwaitingCaloriesIfUnknown Step = "awaiting_calories_if_unknown"
	StepAwaitingAmount            Step = "awaiting_amount"
)

// ProfileDraft holds answers collected so far. Zero values mean "not answered yet".
type ProfileDraft struct {
	Weight      int     `json:"weight,omitempty"`
	Height      int     `json:"height,omitempty"`
	Age         int     `json:"age,omitempty"`
	Gender      Gender  `json:"gender,omitempty"`
	Activity    int     `json:"activity,omitempty"`
	City        string  `json:"city,omitempty"`
	CalorieGoal float64 `json:"calorie_goal,omitempty"`
	WaterGoal   int     `json:"water_goal,omitempty"`
}

// ProfileForm is the profile collection slot.
type ProfileForm struct {
	Step  Step         `json:"step"`
	Draft ProfileDraft `json:"draft"`
}

// FoodForm is the food logging slot. CaloriesPer100g is nil until known.
type FoodForm struct {
	Step            Step     `json:"step"`
	Product         string   `json:"product"`
	CaloriesPer100g *float64 `json:"calories_per_100g,omitempty"`
}

// Session is the ephemeral conversational state of one user.
type Session struct {
	UserID    int64        `json:"user_id"`
	Profile   *ProfileForm `json:"profile,omitempty"`
	Food      *FoodForm    `json:"food,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Empty reports whether no flow is in progress.
func (s *Session) Empty() bool {
	return s == nil || (s.Profile == nil && s.Food == nil)
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	if s.Food != nil {
		f := *s.Food
		if s.Food.CaloriesPer100g != nil {
			v := *s.Food.CaloriesPer100g
			f.CaloriesPer100g = &v
		}
		out.Food = &f
	}
	return &out
}
