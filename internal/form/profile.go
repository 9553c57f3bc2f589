package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/fittrack/internal/errs"
	"github.com/and161185/fittrack/internal/goals"
	"github.com/and161185/fittrack/internal/model"
)

const (
	promptWeight   = "Enter your weight (kg)"
	promptHeight   = "Enter your height (cm)"
	promptAge      = "Enter your age"
	promptGender   = "Choose your gender"
	promptActivity = "How many minutes of activity do you have per day?"
	promptCity     = "Which city are you in?"

	promptOverride         = "To set a different calorie goal, enter it in kcal. Otherwise send \"no\"."
	promptOverrideRequired = "The calculated calorie goal is not positive for these measurements. " +
		"Enter your daily calorie goal in kcal"
)

// GenderChoices are offered at the gender step.
var GenderChoices = []model.Choice{
	{Label: "Male", Data: string(model.GenderMale)},
	{Label: "Female", Data: string(model.GenderFemale)},
}

func genderPrompt(text string) model.Reply {
	return model.Reply{Text: text, Choices: GenderChoices}
}

func (e *Engine) handleProfile(ctx context.Context, s *model.Session, in model.Input) (model.Reply, error) {
	f := s.Profile
	d := f.Draft
	var next model.Reply

	switch f.Step {
	case model.StepAwaitingWeight:
		v, err := parseInt(in.Text)
		if err != nil {
			return model.TextReply("Enter your weight as a whole number"), nil
		}
		if v <= 0 {
			return model.TextReply("Weight must be greater than 0"), nil
		}
		d.Weight = v
		f.Step, next = model.StepAwaitingHeight, model.TextReply(promptHeight)

	case model.StepAwaitingHeight:
		v, err := parseInt(in.Text)
		if err != nil {
			return model.TextReply("Enter your height as a whole number"), nil
		}
		if v <= 0 {
			return model.TextReply("Height must be greater than 0"), nil
		}
		d.Height = v
		f.Step, next = model.StepAwaitingAge, model.TextReply(promptAge)

	case model.StepAwaitingAge:
		v, err := parseInt(in.Text)
		if err != nil {
			return model.TextReply("Enter your age as a whole number"), nil
		}
		if v < 1 || v > 120 {
			return model.TextReply("Enter a valid age (1 to 120)"), nil
		}
		d.Age = v
		f.Step, next = model.StepAwaitingGender, genderPrompt(promptGender)

	case model.StepAwaitingGender:
		if !in.Choice {
			return genderPrompt("Please pick your gender with the buttons"), nil
		}
		g, err := model.ParseGender(in.Text)
		if err != nil {
			return genderPrompt("Please pick your gender with the buttons"), nil
		}
		d.Gender = g
		f.Step, next = model.StepAwaitingActivity, model.TextReply(promptActivity)

	case model.StepAwaitingActivity:
		v, err := parseInt(in.Text)
		if err != nil {
			return model.TextReply("Enter your activity as a whole number of minutes"), nil
		}
		if v < 1 || v > 1440 {
			return model.TextReply("Enter active minutes per day (1 to 1440)"), nil
		}
		d.Activity = v
		f.Step, next = model.StepAwaitingCity, model.TextReply(promptCity)

	case model.StepAwaitingCity:
		city := strings.TrimSpace(in.Text)
		if city == "" {
			return model.TextReply(promptCity), nil
		}
		d.City = city
		// unknown temperature counts as not hot
		temp, ok := e.weather.Temperature(ctx, city)
		if !ok {
			temp = 0
		}
		d.CalorieGoal = goals.CalorieGoal(d.Weight, d.Height, d.Age, d.Gender, d.Activity)
		d.WaterGoal = goals.WaterGoal(d.Weight, d.Activity, temp)
		f.Step = model.StepAwaitingCalorieOverride
		prompt := promptOverride
		if d.CalorieGoal <= 0 {
			prompt = promptOverrideRequired
		}
		next = model.TextReply(fmt.Sprintf(
			"Calculated calorie goal: %.0f kcal/day\nWater goal: %d ml/day\n\n%s",
			d.CalorieGoal, d.WaterGoal, prompt))

	case model.StepAwaitingCalorieOverride:
		return e.completeProfile(ctx, s, in.Text)

	default:
		// unreachable for stored sessions; restart rather than get stuck
		e.log.Warn("unexpected profile step", zap.Int64("user_id", s.UserID), zap.String("step", string(f.Step)))
		return e.StartProfile(ctx, s.UserID)
	}

	f.Draft = d
	if err := e.save(ctx, s); err != nil {
		return model.Reply{}, err
	}
	return next, nil
}

// completeProfile applies the override answer and persists the profile.
func (e *Engine) completeProfile(ctx context.Context, s *model.Session, answer string) (model.Reply, error) {
	d := s.Profile.Draft
	text := strings.ToLower(strings.TrimSpace(answer))
	if text == "no" || text == "нет" {
		if d.CalorieGoal <= 0 {
			return model.TextReply(promptOverrideRequired), nil
		}
	} else {
		v, err := parseInt(text)
		if err != nil || v <= 0 {
			return model.TextReply("Enter a whole number of kcal, or \"no\" to keep the calculated goal"), nil
		}
		d.CalorieGoal = float64(v)
	}

	p := &model.Profile{
		UserID:      s.UserID,
		Weight:      d.Weight,
		Height:      d.Height,
		Age:         d.Age,
		Gender:      d.Gender,
		Activity:    d.Activity,
		City:        d.City,
		CalorieGoal: d.CalorieGoal,
		WaterGoal:   d.WaterGoal,
	}
	if err := e.rec.SaveProfile(ctx, p); err != nil {
		if errors.Is(err, errs.ErrInvalidInput) {
			e.log.Warn("profile rejected", zap.Int64("user_id", p.UserID), zap.Error(err))
			return model.TextReply("These answers don't make a valid profile. Enter a calorie goal in kcal, or send /set_profile to start over"), nil
		}
		return model.Reply{}, fmt.Errorf("complete profile: %w", err)
	}

	s.Profile = nil
	if err := e.finish(ctx, s); err != nil {
		return model.Reply{}, err
	}
	e.log.Info("profile saved", zap.Int64("user_id", p.UserID))
	return model.TextReply(profileSummary(p)), nil
}

func profileSummary(p *model.Profile) string {
	return fmt.Sprintf("Profile saved!\n\n"+
		"Weight: %d kg\nHeight: %d cm\nAge: %d\nGender: %s\nActivity: %d min/day\nCity: %s\n\n"+
		"Calorie goal: %.0f kcal/day\nWater goal: %d ml/day\n\n"+
		"Now you can use /log_water, /log_food, /log_workout and /check_progress",
		p.Weight, p.Height, p.Age, p.Gender, p.Activity, p.City, p.CalorieGoal, p.WaterGoal)
}
