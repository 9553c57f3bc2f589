package bot

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/and161185/fittrack/internal/form"
)

const (
	msgWelcome = "Welcome! I track your water, food and workouts.\nSend /help to see the commands."
	msgHelp    = "Commands:\n" +
		"/start - start over\n" +
		"/set_profile - set up your profile\n" +
		"/cancel - abort the current step\n\n" +
		"After setting up your profile:\n" +
		"/log_water <ml> - log water\n" +
		"/log_food <product> - log food\n" +
		"/log_workout <type> <minutes> - log a workout\n" +
		"/check_progress - today's progress\n" +
		"/weekly - the last 7 days"

	msgNoProfile      = "Set up your profile first: /set_profile"
	msgFinishFlow     = "Finish your current step first, or send /cancel"
	msgNoFlow         = "I didn't get that. Send /help to see what I can do"
	msgUnknownCommand = "Unknown command. Send /help to see what I can do"
	msgInvalidInput   = "That value doesn't look right, please check it and try again"
	msgInternal       = "Something went wrong, please try again later"

	usageLogWater = "Usage: /log_water <amount in ml>"
	usageLogFood  = "Usage: /log_food <product name>"
)

func waterStatus(remaining int) string {
	switch {
	case remaining > 0:
		return fmt.Sprintf("Remaining: %d ml", remaining)
	case remaining < 0:
		return fmt.Sprintf("Goal exceeded by %d ml", -remaining)
	default:
		return "Goal reached!"
	}
}

func caloriesStatus(remaining float64) string {
	switch {
	case remaining > 0:
		return fmt.Sprintf("Remaining: %s kcal", fmtKcal(remaining))
	case remaining < 0:
		return fmt.Sprintf("Goal exceeded by %s kcal", fmtKcal(-remaining))
	default:
		return "Goal reached!"
	}
}

func fmtKcal(v float64) string { return form.FormatKcal(v) }

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[n:])
}
