package goals

import (
	"testing"

	"github.com/and161185/fittrack/internal/model"
	"github.com/stretchr/testify/require"
)

func TestActivityFactor_Thresholds(t *testing.T) {
	cases := []struct {
		minutes int
		want    float64
	}{
		{1, 1.2}, {29, 1.2},
		{30, 1.375}, {59, 1.375},
		{60, 1.55}, {89, 1.55},
		{90, 1.725}, {119, 1.725},
		{120, 1.9}, {1440, 1.9},
	}
	for _, c := range cases {
		require.Equal(t, c.want, ActivityFactor(c.minutes), "minutes=%d", c.minutes)
	}
}

func TestCalorieGoal_MaleFemale(t *testing.T) {
	male := CalorieGoal(70, 175, 30, model.GenderMale, 45)
	require.InDelta(t, (10*70+6.25*175-5*30+5)*1.375, male, 1e-9)
	require.InDelta(t, 2267.03125, male, 1e-9)

	female := CalorieGoal(60, 165, 25, model.GenderFemale, 10)
	require.InDelta(t, (10*60+6.25*165-5*25-161)*1.2, female, 1e-9)
}

func TestCalorieGoal_IncreasesAcrossThresholds(t *testing.T) {
	prev := CalorieGoal(70, 175, 30, model.GenderMale, 29)
	require.Greater(t, prev, 0.0)
	for _, m := range []int{30, 60, 90, 120} {
		cur := CalorieGoal(70, 175, 30, model.GenderMale, m)
		require.Greater(t, cur, prev, "minutes=%d", m)
		prev = cur
	}
}

func TestCalorieGoal_NonPositiveForTinyBodies(t *testing.T) {
	// weight 1, height 1, age 120 are all accepted by the form
	goal := CalorieGoal(1, 1, 120, model.GenderFemale, 10)
	require.InDelta(t, (10+6.25-600-161)*1.2, goal, 1e-9)
	require.Less(t, goal, 0.0)
}

func TestWaterGoal(t *testing.T) {
	require.Equal(t, 3100, WaterGoal(70, 30, 26))
	require.Equal(t, 2600, WaterGoal(70, 30, 20))
	require.Equal(t, 3350, WaterGoal(70, 45, 30))
	// bonus is a step, 25 exactly is not hot
	require.Equal(t, 2600, WaterGoal(70, 30, 25))
	// truncation: 500*(10/30) = 166.66..
	require.Equal(t, 30*70+166, WaterGoal(70, 10, 0))
}

func TestWorkoutCalories(t *testing.T) {
	require.Equal(t, 560.0, WorkoutCalories("БЕГ", 60, 70))
	require.Equal(t, 560.0, WorkoutCalories("Run", 60, 70))
	require.Equal(t, 350.0, WorkoutCalories("unknown", 60, 70))
	require.Equal(t, 122.5, WorkoutCalories("йога", 35, 70))
	// rounding to one decimal: 3.5*71*(13/60) = 53.841..
	require.Equal(t, 53.8, WorkoutCalories("walk", 13, 71))
}

func TestWorkoutCalories_OnlyTableNamesMatch(t *testing.T) {
	require.Equal(t, 350.0, WorkoutCalories("running", 60, 70))
	for _, name := range []string{"walking", "bike", "swim", "football"} {
		met, ok := MET(name)
		require.False(t, ok, name)
		require.Equal(t, 5.0, met, name)
	}
	require.Equal(t, 420.0, WorkoutCalories("Велосипед", 60, 70))
}

func TestMET_ExactMatchOnly(t *testing.T) {
	_, ok := MET("running fast")
	require.False(t, ok)
	met, ok := MET("Баскетбол")
	require.True(t, ok)
	require.Equal(t, 6.5, met)
}

func TestExtraWater(t *testing.T) {
	require.Equal(t, 0, ExtraWater(0))
	require.Equal(t, 200, ExtraWater(30))
	require.Equal(t, 300, ExtraWater(45))
	require.Equal(t, 233, ExtraWater(35))
}

func TestWorkoutTypes(t *testing.T) {
	types := WorkoutTypes()
	require.Len(t, types, 10)
	require.Equal(t, "run", types[0])
}
