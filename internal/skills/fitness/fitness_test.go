package fitness

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/metoolok/metoolok/internal/memory"
	"github.com/metoolok/metoolok/internal/skills"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSkill(t *testing.T) (*FitnessSkill, *memory.Store) {
	t.Helper()
	dir := t.TempDir()
	mem, err := memory.Open(filepath.Join(dir, "context.json"), dir, zap.NewNop())
	require.NoError(t, err)

	raw, err := New(skills.Deps{Memory: mem, Logger: zap.NewNop()})
	require.NoError(t, err)
	s := raw.(*FitnessSkill)
	s.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return s, mem
}

func run(t *testing.T, s *FitnessSkill, input string) string {
	t.Helper()
	out, err := s.Execute(context.Background(), input)
	require.NoError(t, err)
	return out
}

func TestCalculateBMI(t *testing.T) {
	s, mem := newTestSkill(t)

	out := run(t, s, "fitness bmi height:175 weight:70")

	// 70 / 1.75^2 = 22.86
	assert.Contains(t, out, "BMI: **22.86**")
	assert.Contains(t, out, "Status: **Normal**")
	assert.Contains(t, out, "Low Risk")

	metrics := mem.Map("fitness_metrics")
	assert.Equal(t, 70.0, metrics["weight"])
	assert.Equal(t, 175.0, metrics["height"])
	assert.Equal(t, 22.86, metrics["last_bmi"])
	assert.Equal(t, "2026-08-30", metrics["last_update"])

	history := metrics["weight_history"].(map[string]float64)
	assert.Equal(t, 70.0, history["2026-08-30"])
}

func TestCalculateBMIStatuses(t *testing.T) {
	s, _ := newTestSkill(t)

	tests := []struct {
		input  string
		status string
	}{
		{"fitness bmi height:180 weight:55", "Underweight"},
		{"fitness bmi height:170 weight:65", "Normal"},
		{"fitness bmi height:170 weight:80", "Overweight"},
		{"fitness bmi height:170 weight:95", "Obese"},
	}
	for _, tt := range tests {
		assert.Contains(t, run(t, s, tt.input), "Status: **"+tt.status+"**", "input %q", tt.input)
	}
}

func TestCalculateBMIUsesProfile(t *testing.T) {
	s, _ := newTestSkill(t)
	run(t, s, "fitness add: age 40")
	run(t, s, "fitness add: gender female")

	out := run(t, s, "fitness bmi height:165 weight:60")

	// bmi = 22.04; female, age 40: 1.20*22.04 + 0.23*40 - 5.4 = 30.2
	assert.Contains(t, out, "Estimated Body Fat: **30.2%**")
	assert.Contains(t, out, "20-25%")
}

func TestCalculateBMIMissingInput(t *testing.T) {
	s, _ := newTestSkill(t)

	assert.Contains(t, run(t, s, "fitness bmi"), "Please give height and weight")
	assert.Contains(t, run(t, s, "fitness bmi height:abc weight:"), "Please give height and weight")
}

func TestCalculateCalories(t *testing.T) {
	s, _ := newTestSkill(t)
	run(t, s, "fitness add: age 30")
	run(t, s, "fitness bmi height:180 weight:80")

	out := run(t, s, "fitness calories")

	// BMR = 10*80 + 6.25*180 - 5*30 + 5 = 1780, TDEE = 1780*1.55 = 2759
	assert.Contains(t, out, "(BMR):** 1780 kcal")
	assert.Contains(t, out, "(TDEE):** 2759 kcal")
	assert.Contains(t, out, "Maintenance")
	// protein 2.2g/kg = 176g
	assert.Contains(t, out, "Protein: **176g**")
	// water 80*0.035 = 2.8L
	assert.Contains(t, out, "2.8L")
}

func TestCalculateCaloriesWithGoal(t *testing.T) {
	s, _ := newTestSkill(t)
	run(t, s, "fitness bmi height:180 weight:80")
	run(t, s, "fitness goal: fat loss")

	out := run(t, s, "fitness calories")

	assert.Contains(t, out, "Fat Loss (-500 kcal)")
	// TDEE 2780*... age default 30 -> 2759, target 2259
	assert.Contains(t, out, "**2259 kcal**")
}

func TestCalculateCaloriesNeedsBMIFirst(t *testing.T) {
	s, _ := newTestSkill(t)

	assert.Contains(t, run(t, s, "fitness calories"), "Compute your BMI first")
}

func TestWorkoutPlanFollowsGoal(t *testing.T) {
	s, _ := newTestSkill(t)

	assert.Contains(t, run(t, s, "fitness workout"), "Balanced Fitness")

	run(t, s, "fitness goal: fat loss")
	assert.Contains(t, run(t, s, "fitness workout"), "Fat Loss")

	run(t, s, "fitness goal: muscle gain")
	assert.Contains(t, run(t, s, "fitness workout"), "Muscle Gain")
}

func TestAddMetric(t *testing.T) {
	s, mem := newTestSkill(t)

	out := run(t, s, "fitness add: protein 150g")

	assert.Equal(t, "✅ **Protein** recorded: **150g** (2026-08-30)", out)
	metrics := mem.Map("fitness_metrics")
	entries := metrics["protein"].(map[string]interface{})
	assert.Equal(t, "150g", entries["2026-08-30"])
}

func TestAddWeightUpdatesHistory(t *testing.T) {
	s, mem := newTestSkill(t)

	run(t, s, "fitness add: weight 75.5")

	metrics := mem.Map("fitness_metrics")
	assert.Equal(t, 75.5, metrics["weight"])
	history := metrics["weight_history"].(map[string]float64)
	assert.Equal(t, 75.5, history["2026-08-30"])
}

func TestShowProgress(t *testing.T) {
	s, mem := newTestSkill(t)
	mem.Set("fitness_metrics", map[string]interface{}{
		"weight_history": map[string]interface{}{
			"2026-08-16": 80.0,
			"2026-08-30": 78.0,
		},
	})

	out := run(t, s, "fitness progress")

	assert.Contains(t, out, "Start (2026-08-16): 80 kg")
	assert.Contains(t, out, "Current (2026-08-30): 78 kg")
	assert.Contains(t, out, "📉 2.0 kg")
	// 2 kg over 14 days -> 1.00 kg/week
	assert.Contains(t, out, "1.00 kg/week")
	assert.Contains(t, out, "fat loss is on track")
}

func TestShowProgressEmpty(t *testing.T) {
	s, _ := newTestSkill(t)

	assert.Contains(t, run(t, s, "fitness progress"), "No weight history yet")
}

func TestShowMetrics(t *testing.T) {
	s, _ := newTestSkill(t)
	run(t, s, "fitness bmi height:175 weight:70")
	run(t, s, "fitness add: gender male")
	run(t, s, "fitness add: water 3l")

	out := run(t, s, "fitness show")

	assert.Contains(t, out, "Weight: **70 kg**")
	assert.Contains(t, out, "Height: **175 cm**")
	assert.Contains(t, out, "Gender: **male**")
	assert.Contains(t, out, "Water (2026-08-30): 3l")
}

func TestShowMetricsEmpty(t *testing.T) {
	s, _ := newTestSkill(t)

	assert.Contains(t, run(t, s, "fitness show"), "No data recorded yet")
}

func TestHelpFallback(t *testing.T) {
	s, _ := newTestSkill(t)

	assert.Contains(t, run(t, s, "fitness"), "Usage Guide")
}
