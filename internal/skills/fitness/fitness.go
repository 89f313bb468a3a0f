// Package fitness tracks body metrics and derives calorie and
// training guidance from them. All state lives in context memory
// under the "fitness_metrics" key.
package fitness

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/metoolok/metoolok/internal/skills"
)

const metricsKey = "fitness_metrics"

// profile keys whose values are recorded per date
var profileKeys = []string{"age", "gender", "activity", "goal"}

// FitnessSkill tracks body metrics and gives training advice.
type FitnessSkill struct {
	*skills.BaseSkill
	now func() time.Time
}

// New creates the fitness skill.
func New(deps skills.Deps) (skills.Skill, error) {
	return &FitnessSkill{
		BaseSkill: skills.NewBaseSkill(
			"fitness",
			"Tracks body metrics, computes calorie needs and suggests workouts.",
			[]string{"fitness", "calorie", "calories", "workout", "bmi", "macro", "diet"},
			deps.Memory,
			deps.Logger,
		),
		now: time.Now,
	}, nil
}

// Execute routes to a sub-command based on keywords in the input.
func (s *FitnessSkill) Execute(ctx context.Context, input string) (string, error) {
	lower := strings.ToLower(input)
	metrics := s.ReadMap(metricsKey)

	switch {
	case strings.Contains(lower, "profile") || strings.Contains(lower, "setup"):
		return s.profileGuide(), nil
	case strings.Contains(lower, "bmi"):
		return s.calculateBMI(input, metrics), nil
	case strings.Contains(lower, "workout") || strings.Contains(lower, "program") || strings.Contains(lower, "plan"):
		return s.workoutPlan(metrics), nil
	case strings.Contains(lower, "calorie") || strings.Contains(lower, "tdee") || strings.Contains(lower, "macro"):
		return s.calculateCalories(metrics), nil
	case strings.Contains(lower, "add:"):
		return s.addMetric(input, metrics), nil
	case strings.Contains(lower, "goal:"):
		return s.setGoal(input, metrics), nil
	case strings.Contains(lower, "progress"):
		return s.showProgress(metrics), nil
	case strings.Contains(lower, "show") || strings.Contains(lower, "report"):
		return s.showMetrics(metrics), nil
	}

	return s.help(), nil
}

func (s *FitnessSkill) profileGuide() string {
	return "### 👤 Profile Setup\n\n" +
		"**Step 1:** Enter your basics:\n" +
		"`fitness add: age 25`\n" +
		"`fitness add: gender male` (or female)\n" +
		"`fitness add: activity moderate` (low/moderate/high)\n\n" +
		"**Step 2:** Compute your BMI:\n" +
		"`fitness bmi height:175 weight:70`\n\n" +
		"**Step 3:** Set a goal:\n" +
		"`fitness goal: fat loss` (or muscle gain)\n\n" +
		"💡 Then check everything with `fitness show`."
}

// calculateBMI parses height:/weight: pairs, computes BMI and an
// estimated body fat percentage, and records the measurement.
func (s *FitnessSkill) calculateBMI(input string, metrics map[string]interface{}) string {
	var weight, heightCm float64
	for _, part := range strings.Fields(input) {
		lower := strings.ToLower(part)
		if v, ok := numberAfter(lower, "weight:"); ok {
			weight = v
		}
		if v, ok := numberAfter(lower, "height:"); ok {
			heightCm = v
		}
	}

	if weight <= 0 || heightCm <= 0 {
		return "⚠️ **Error:** Please give height and weight.\n\n" +
			"**Example:** `fitness bmi height:180 weight:85`\n" +
			"**Note:** Decimals are fine (e.g. height:175.5)"
	}

	heightM := heightCm / 100
	bmi := weight / (heightM * heightM)

	status := "Obese"
	switch {
	case bmi < 18.5:
		status = "Underweight"
	case bmi < 25:
		status = "Normal"
	case bmi < 30:
		status = "Overweight"
	}

	age := latestInt(metrics, "age", 30)
	gender := strings.ToLower(latestString(metrics, "gender", "male"))

	// Deurenberg body fat estimate from BMI, age and gender
	var bodyFat float64
	var idealFat string
	if strings.Contains(gender, "female") || strings.Contains(gender, "woman") {
		bodyFat = 1.20*bmi + 0.23*float64(age) - 5.4
		idealFat = "20-25% (18-20% for fitness)"
	} else {
		bodyFat = 1.20*bmi + 0.23*float64(age) - 16.2
		idealFat = "10-15% (8-12% for fitness)"
	}
	bodyFat = math.Round(bodyFat*10) / 10

	risk := "High Risk"
	switch {
	case bmi < 25:
		risk = "Low Risk"
	case bmi < 30:
		risk = "Moderate Risk"
	}

	today := s.now().Format("2006-01-02")
	history := asDateMap(metrics["weight_history"])
	history[today] = weight
	metrics["weight_history"] = history
	metrics["weight"] = weight
	metrics["height"] = heightCm
	metrics["last_bmi"] = math.Round(bmi*100) / 100
	metrics["body_fat"] = bodyFat
	metrics["last_update"] = today
	s.SaveToMemory(metricsKey, metrics)

	return fmt.Sprintf(
		"### 📊 Body Analysis (%s)\n\n"+
			"**Base Metrics:**\n"+
			"- Height: %.5g cm\n"+
			"- Weight: %.5g kg\n"+
			"- BMI: **%.2f**\n"+
			"- Status: **%s**\n\n"+
			"**Body Composition:**\n"+
			"- Estimated Body Fat: **%.1f%%**\n"+
			"- Ideal Body Fat: %s\n"+
			"- Risk Level: **%s**\n\n"+
			"**Healthy Weight Range:**\n"+
			"- %.1f kg - %.1f kg\n\n"+
			"💡 *Aim for 0.5-1 kg of change per week.*\n"+
			"📈 Track it with `fitness progress`",
		today, heightCm, weight, bmi, status, bodyFat, idealFat, risk,
		18.5*heightM*heightM, 24.9*heightM*heightM,
	)
}

// calculateCalories derives BMR (Mifflin-St Jeor), TDEE and a macro
// split from the stored profile.
func (s *FitnessSkill) calculateCalories(metrics map[string]interface{}) string {
	weight := asFloat(metrics["weight"])
	height := asFloat(metrics["height"])
	if weight <= 0 || height <= 0 {
		return "⚠️ Compute your BMI first: `fitness bmi height:175 weight:70`"
	}

	age := latestInt(metrics, "age", 30)
	gender := strings.ToLower(latestString(metrics, "gender", "male"))

	var bmr float64
	if strings.Contains(gender, "female") || strings.Contains(gender, "woman") {
		bmr = 10*weight + 6.25*height - 5*float64(age) - 161
	} else {
		bmr = 10*weight + 6.25*height - 5*float64(age) + 5
	}

	activity := strings.ToLower(latestString(metrics, "activity", "moderate"))
	multiplier := 1.55
	switch {
	case strings.Contains(activity, "low") || strings.Contains(activity, "sedentary"):
		multiplier = 1.2
	case strings.Contains(activity, "high") || strings.Contains(activity, "intense"):
		multiplier = 1.9
	}

	tdee := math.Round(bmr * multiplier)

	goal := strings.ToLower(latestString(metrics, "goal", ""))
	goalCalories := tdee
	goalText := "Maintenance"
	switch {
	case strings.Contains(goal, "fat") || strings.Contains(goal, "loss") || strings.Contains(goal, "cut"):
		goalCalories = tdee - 500
		goalText = "Fat Loss (-500 kcal)"
	case strings.Contains(goal, "muscle") || strings.Contains(goal, "gain") || strings.Contains(goal, "bulk"):
		goalCalories = tdee + 300
		goalText = "Muscle Gain (+300 kcal)"
	}

	protein := math.Round(weight * 2.2)
	fat := math.Round(goalCalories * 0.25 / 9)
	carbs := math.Round((goalCalories - protein*4 - fat*9) / 4)

	return fmt.Sprintf(
		"### 🔥 Daily Calories and Macros\n\n"+
			"**Basal Metabolic Rate (BMR):** %.0f kcal\n"+
			"**Daily Need (TDEE):** %.0f kcal\n"+
			"**Target (%s):** **%.0f kcal**\n\n"+
			"**Macros:**\n"+
			"- 🥩 Protein: **%.0fg** (%.0f kcal)\n"+
			"- 🥑 Fat: **%.0fg** (%.0f kcal)\n"+
			"- 🍚 Carbs: **%.0fg** (%.0f kcal)\n\n"+
			"💡 *Drink about %.1fL of water daily.*\n"+
			"📊 Log your macros: `fitness add: protein 150g`",
		math.Round(bmr), tdee, goalText, goalCalories,
		protein, protein*4, fat, fat*9, carbs, carbs*4,
		weight*0.035,
	)
}

func (s *FitnessSkill) workoutPlan(metrics map[string]interface{}) string {
	goal := strings.ToLower(latestString(metrics, "goal", ""))

	switch {
	case strings.Contains(goal, "fat") || strings.Contains(goal, "loss") || strings.Contains(goal, "cut"):
		return "### 🔥 Workout Plan: Fat Loss\n\n" +
			"**Monday - Push:** Bench Press 4x8-10, Incline DB Press 3x10-12, Shoulder Press 3x10, Lateral Raises 3x12-15, Dips 3x10-12\n" +
			"🏃 Cardio: 25 min HIIT\n\n" +
			"**Wednesday - Pull:** Deadlift 4x6-8, Pull-ups 4x8-10, Barbell Row 3x10, Face Pulls 3x15, Curls 3x10-12\n" +
			"🏃 Cardio: 20 min LISS\n\n" +
			"**Friday - Legs:** Squat 4x8-10, Romanian Deadlift 3x10, Leg Press 3x12, Lunges 3x10 per leg, Calf Raises 4x15\n" +
			"🏃 Cardio: 30 min LISS\n\n" +
			"**Sunday - Full Body HIIT:** Burpees, Mountain Climbers, Jump Squats; 4 rounds, 45s work / 15s rest\n\n" +
			"💡 *Target 150+ minutes of weekly cardio.*"
	case strings.Contains(goal, "muscle") || strings.Contains(goal, "gain") || strings.Contains(goal, "bulk"):
		return "### 💪 Workout Plan: Muscle Gain (PPL, 6 days)\n\n" +
			"**Day 1 - Push:** Bench Press 5x5, Incline Press 4x8, Flyes 3x12, Military Press 4x8, Lateral Raises 4x15, Triceps 3x10-12\n\n" +
			"**Day 2 - Pull:** Deadlift 5x5, Weighted Pull-ups 4x6-8, Barbell Row 4x8, T-Bar Row 3x10, Face Pulls 3x15, Curls 3x10-12\n\n" +
			"**Day 3 - Legs:** Back Squat 5x5, Front Squat 3x8, Leg Press 4x12, Romanian Deadlift 4x10, Calf Raises 5x15\n\n" +
			"**Days 4-6:** Repeat with variations\n\n" +
			"⚡ *Progressive overload: add weight or reps every week.*\n" +
			"😴 *8+ hours of sleep and enough protein.*"
	}

	return "### ⚖️ Workout Plan: Balanced Fitness\n\n" +
		"**Mon & Thu - Upper Body:** Push-ups / Bench 3x10-12, Pull-ups / Rows 3x10, Shoulder Press 3x10, Arm Supersets 3x12\n\n" +
		"**Tue & Fri - Lower Body:** Squats 4x10, Deadlifts 3x8, Lunges 3x10 per leg, Calf Raises 3x15\n\n" +
		"**Wed & Sat - Cardio + Core:** 30 min steady run, Plank 3x60s, Russian Twists 3x20, Leg Raises 3x15\n\n" +
		"💡 *Set a goal: `fitness goal: fat loss` or `fitness goal: muscle gain`*"
}

// addMetric records "add: <name> <value>" under today's date.
func (s *FitnessSkill) addMetric(input string, metrics map[string]interface{}) string {
	idx := strings.Index(strings.ToLower(input), "add:")
	rest := strings.TrimSpace(input[idx+len("add:"):])
	parts := strings.SplitN(rest, " ", 2)
	if rest == "" {
		return "⚠️ **Format error.** Use `fitness add: protein 150g` or `fitness add: weight 75.5`."
	}

	name := strings.ToLower(parts[0])
	value := "yes"
	if len(parts) == 2 {
		value = strings.TrimSpace(parts[1])
	}

	today := s.now().Format("2006-01-02")

	if name == "weight" {
		if w, err := strconv.ParseFloat(strings.TrimRight(value, "kg "), 64); err == nil {
			history := asDateMap(metrics["weight_history"])
			history[today] = w
			metrics["weight_history"] = history
			metrics["weight"] = w
		}
	}

	entries, _ := metrics[name].(map[string]interface{})
	if entries == nil {
		entries = map[string]interface{}{}
	}
	entries[today] = value
	metrics[name] = entries
	s.SaveToMemory(metricsKey, metrics)

	return fmt.Sprintf("✅ **%s** recorded: **%s** (%s)", capitalize(name), value, today)
}

func (s *FitnessSkill) setGoal(input string, metrics map[string]interface{}) string {
	idx := strings.Index(strings.ToLower(input), "goal:")
	goal := strings.TrimSpace(input[idx+len("goal:"):])
	if goal == "" {
		return "**Goal examples:**\n- `fitness goal: fat loss`\n- `fitness goal: muscle gain`"
	}

	today := s.now().Format("2006-01-02")
	entries, _ := metrics["goal"].(map[string]interface{})
	if entries == nil {
		entries = map[string]interface{}{}
	}
	entries[today] = goal
	metrics["goal"] = entries
	s.SaveToMemory(metricsKey, metrics)

	return fmt.Sprintf("✅ **Goal set:** %s\n\n💡 Check your target calories: `fitness calories`\n🏋️ Get a plan: `fitness workout`", goal)
}

// showProgress summarizes the weight history.
func (s *FitnessSkill) showProgress(metrics map[string]interface{}) string {
	history := asDateMap(metrics["weight_history"])
	if len(history) == 0 {
		return "📊 No weight history yet. Start with `fitness bmi height:X weight:Y`!"
	}

	dates := make([]string, 0, len(history))
	for d := range history {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	if len(dates) == 1 {
		return fmt.Sprintf("📊 First measurement: %s - %.5g kg\n\n💡 Keep measuring regularly!", dates[0], history[dates[0]])
	}

	first, last := dates[0], dates[len(dates)-1]
	change := history[last] - history[first]
	arrow := "📈"
	if change < 0 {
		arrow = "📉"
	}

	days := 1.0
	if tFirst, err1 := time.Parse("2006-01-02", first); err1 == nil {
		if tLast, err2 := time.Parse("2006-01-02", last); err2 == nil {
			if d := tLast.Sub(tFirst).Hours() / 24; d > 0 {
				days = d
			}
		}
	}
	weeklyAvg := change / days * 7

	var b strings.Builder
	fmt.Fprintf(&b, "### 📈 Progress Report\n\n**Summary:**\n")
	fmt.Fprintf(&b, "- Start (%s): %.5g kg\n", first, history[first])
	fmt.Fprintf(&b, "- Current (%s): %.5g kg\n", last, history[last])
	fmt.Fprintf(&b, "- Total Change: %s %.1f kg\n", arrow, math.Abs(change))
	fmt.Fprintf(&b, "- Weekly Average: %.2f kg/week\n\n", math.Abs(weeklyAvg))

	weekAgo := s.now().AddDate(0, 0, -7).Format("2006-01-02")
	var recent []string
	for _, d := range dates {
		if d >= weekAgo {
			recent = append(recent, fmt.Sprintf("- %s: %.5g kg", d, history[d]))
		}
	}
	if len(recent) > 0 {
		b.WriteString("**Last 7 Days:**\n" + strings.Join(recent, "\n") + "\n\n")
	}

	switch {
	case change < 0:
		b.WriteString("🎉 *Great work, the fat loss is on track!*")
	case change > 0:
		b.WriteString("💪 *You are progressing on the muscle gain path!*")
	default:
		b.WriteString("⚖️ *Holding steady.*")
	}
	return b.String()
}

// showMetrics renders everything on record.
func (s *FitnessSkill) showMetrics(metrics map[string]interface{}) string {
	if len(metrics) == 0 {
		return "📊 No data recorded yet.\n\n**Get started:**\n`fitness profile` - setup guide\n`fitness bmi height:175 weight:70` - compute BMI"
	}

	var b strings.Builder
	b.WriteString("### 📋 Your Fitness Profile\n\n")

	var basics []string
	if w := asFloat(metrics["weight"]); w > 0 {
		basics = append(basics, fmt.Sprintf("- Weight: **%.5g kg**", w))
	}
	if h := asFloat(metrics["height"]); h > 0 {
		basics = append(basics, fmt.Sprintf("- Height: **%.5g cm**", h))
	}
	if bmi := asFloat(metrics["last_bmi"]); bmi > 0 {
		basics = append(basics, fmt.Sprintf("- BMI: **%.2f**", bmi))
	}
	if bf := asFloat(metrics["body_fat"]); bf != 0 {
		basics = append(basics, fmt.Sprintf("- Body Fat: **%.1f%%**", bf))
	}
	if len(basics) > 0 {
		b.WriteString("**📊 Base Metrics:**\n" + strings.Join(basics, "\n") + "\n\n")
	}

	var profile []string
	for _, key := range profileKeys {
		if val := latestString(metrics, key, ""); val != "" {
			profile = append(profile, fmt.Sprintf("- %s: **%s**", capitalize(key), val))
		}
	}
	if len(profile) > 0 {
		b.WriteString("**👤 Profile:**\n" + strings.Join(profile, "\n") + "\n\n")
	}

	var daily []string
	skip := map[string]bool{
		"weight": true, "height": true, "last_bmi": true, "body_fat": true,
		"last_update": true, "weight_history": true,
		"age": true, "gender": true, "activity": true, "goal": true,
	}
	var keys []string
	for k := range metrics {
		if !skip[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		entries, ok := metrics[key].(map[string]interface{})
		if !ok {
			continue
		}
		var dates []string
		for d := range entries {
			dates = append(dates, d)
		}
		sort.Strings(dates)
		if len(dates) > 3 {
			dates = dates[len(dates)-3:]
		}
		for _, d := range dates {
			daily = append(daily, fmt.Sprintf("- %s (%s): %v", capitalize(key), d, entries[d]))
		}
	}
	if len(daily) > 0 {
		b.WriteString("**📅 Recent Entries:**\n" + strings.Join(daily, "\n") + "\n\n")
	}

	if updated, ok := metrics["last_update"].(string); ok && updated != "" {
		fmt.Fprintf(&b, "*Last update: %s*\n\n", updated)
	}

	b.WriteString("💡 **Commands:** `fitness calories`, `fitness workout`, `fitness progress`")
	return b.String()
}

func (s *FitnessSkill) help() string {
	return "### 💪 Fitness - Usage Guide\n\n" +
		"**🎯 Getting Started:**\n" +
		"`fitness profile` - setup guide\n" +
		"`fitness bmi height:175 weight:70` - compute BMI\n" +
		"`fitness goal: fat loss` - set a goal\n\n" +
		"**📊 Calculations:**\n" +
		"`fitness calories` - daily calories and macros\n" +
		"`fitness workout` - training plan\n\n" +
		"**📝 Logging:**\n" +
		"`fitness add: protein 150g`\n" +
		"`fitness add: water 3l`\n" +
		"`fitness add: weight 72.5`\n\n" +
		"**📈 Reports:**\n" +
		"`fitness show` - everything on record\n" +
		"`fitness progress` - weight trend"
}

// --- helpers ---

func numberAfter(token, prefix string) (float64, bool) {
	if !strings.HasPrefix(token, prefix) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(token, prefix), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// latestString returns the most recent date-keyed value for a profile
// metric, or def when none is recorded.
func latestString(metrics map[string]interface{}, key, def string) string {
	entries, ok := metrics[key].(map[string]interface{})
	if !ok || len(entries) == 0 {
		return def
	}
	var latest string
	for d := range entries {
		if d > latest {
			latest = d
		}
	}
	return fmt.Sprintf("%v", entries[latest])
}

func latestInt(metrics map[string]interface{}, key string, def int) int {
	raw := latestString(metrics, key, "")
	if raw == "" {
		return def
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if n, err := strconv.Atoi(digits); err == nil && n > 0 {
		return n
	}
	return def
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func asDateMap(v interface{}) map[string]float64 {
	out := map[string]float64{}
	if m, ok := v.(map[string]interface{}); ok {
		for k, raw := range m {
			out[k] = asFloat(raw)
		}
	} else if m, ok := v.(map[string]float64); ok {
		for k, f := range m {
			out[k] = f
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
