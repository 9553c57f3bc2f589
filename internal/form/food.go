package form

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/and161185/fittrack/internal/model"
)

const (
	promptUnknownFood = "I have no data about this product. Enter its calories per 100 g"
	promptAmount      = "Enter the amount eaten in g (ml)"
)

func (e *Engine) handleFood(ctx context.Context, s *model.Session, in model.Input) (model.Reply, error) {
	f := s.Food
	if f.Step == model.StepAwaitingCaloriesIfUnknown || f.CaloriesPer100g == nil {
		v, err := parseInt(in.Text)
		if err != nil || v < 0 {
			return model.TextReply("Please enter calories per 100 g as a whole number"), nil
		}
		kcal := float64(v)
		f.CaloriesPer100g = &kcal
		f.Step = model.StepAwaitingAmount
		if err := e.save(ctx, s); err != nil {
			return model.Reply{}, err
		}
		return model.TextReply(promptAmount), nil
	}

	amount, err := parseInt(in.Text)
	if err != nil || amount <= 0 {
		return model.TextReply("Please enter the amount as a positive whole number"), nil
	}
	consumed := *f.CaloriesPer100g * float64(amount) / 100
	entry, err := e.rec.AddCalories(ctx, s.UserID, consumed)
	if err != nil {
		return model.Reply{}, fmt.Errorf("log food: %w", err)
	}

	s.Food = nil
	if err := e.finish(ctx, s); err != nil {
		return model.Reply{}, err
	}
	return model.TextReply(fmt.Sprintf("Recorded: %s kcal\nTotal consumed today: %s kcal",
		FormatKcal(entry.Consumed), FormatKcal(entry.Total))), nil
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// FormatKcal renders a calorie amount with at most one decimal.
func FormatKcal(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
