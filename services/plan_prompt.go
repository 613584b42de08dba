package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"stackedwins/models"
)

const planSystemPrompt = "You are a wellness coach that creates structured, achievable growth plans. Always respond with valid JSON only, no markdown formatting."

const (
	minTaskMinutes         = 2
	maxTaskMinutes         = 10
	maxStressedTaskMinutes = 5
	expectedMilestones     = 3
	highStressThreshold    = 7
	dailyMinutesCap        = 30
	milestoneDateLayout    = "2006-01-02"
)

var (
	errNoTasks    = errors.New("plan response has no daily tasks")
	errEmptyReply = errors.New("plan response is empty")
)

// isHighStress reports whether the plan must be kept at low intensity.
func isHighStress(a *models.Assessment) bool {
	return a.StressLevel > highStressThreshold || a.AnxietyLevel > highStressThreshold
}

// BuildPlanPrompt renders the user prompt for plan generation. The output is
// a pure function of its inputs.
func BuildPlanPrompt(a *models.Assessment, baseline *models.Baseline, progress *models.Progress) string {
	baselineLine := "No baseline data available."
	if baseline != nil {
		baselineLine = fmt.Sprintf(
			"Baseline: Stress %d/10, Anxiety %d/10, Mood %d/10. Sleep: %d/10 quality, %s hours. Time: %dmin weekday, %dmin weekend.",
			baseline.MentalHealth.Stress, baseline.MentalHealth.Anxiety, baseline.MentalHealth.MoodStability,
			baseline.Sleep.Quality, formatNumber(baseline.Sleep.Hours),
			baseline.TimeAvailability.Weekday, baseline.TimeAvailability.Weekend,
		)
	}

	progressLine := ""
	if progress != nil {
		if progress.Improvement != nil {
			progressLine = fmt.Sprintf("Progress: Stress %s%%, Energy %s%%.",
				signedPercent(progress.Improvement.Stress), signedPercent(progress.Improvement.Energy))
		} else {
			progressLine = "Progress: No progress data yet."
		}
	}

	var b strings.Builder
	b.WriteString("You are a wellness coach creating a personalized growth plan. The user has completed an assessment.\n\n")
	b.WriteString(baselineLine + "\n")
	b.WriteString(progressLine + "\n\n")

	b.WriteString("Current Assessment:\n")
	fmt.Fprintf(&b, "- Stress Level: %d/10\n", a.StressLevel)
	fmt.Fprintf(&b, "- Anxiety Level: %d/10\n", a.AnxietyLevel)
	fmt.Fprintf(&b, "- Mood Stability: %d/10\n", a.MoodStability)
	fmt.Fprintf(&b, "- Sleep Quality: %d/10\n", a.SleepQuality)
	fmt.Fprintf(&b, "- Sleep Hours: %s\n", formatNumber(a.SleepHours))
	fmt.Fprintf(&b, "- Available Time: %d minutes on weekdays, %d minutes on weekends\n", a.WeekdayMinutes, a.WeekendMinutes)
	fmt.Fprintf(&b, "- Goals: %s\n", strings.Join(a.Goals, ", "))
	fmt.Fprintf(&b, "- Values: %s\n", strings.Join(a.Values, ", "))
	fmt.Fprintf(&b, "- Preferred Tone: %s\n\n", a.PreferredTone)

	b.WriteString(planShape)

	b.WriteString("\n\nRules:\n")
	b.WriteString("- Start EXTREMELY small. Tasks should be 2-10 minutes each.\n")
	fmt.Fprintf(&b, "- Total daily time should not exceed %d minutes on weekdays.\n", min(a.WeekdayMinutes, dailyMinutesCap))
	b.WriteString("- If stress > 7 or anxiety > 7, make tasks even smaller (2-5 minutes each).\n")
	b.WriteString("- Create 3-5 tasks per day maximum.\n")
	b.WriteString("- One task must be marked as \"anchorWin\" (the most important one).\n")
	b.WriteString("- Tasks must be meaningful and build toward the vision.\n")
	fmt.Fprintf(&b, "- Use the %s tone in descriptions.\n", a.PreferredTone)
	b.WriteString("- Make tasks specific and actionable, not vague.\n\n")
	b.WriteString("Respond with ONLY the JSON object, no other text.")
	return b.String()
}

const planShape = `Create a growth plan with this structure (respond ONLY with valid JSON, no markdown):

{
  "vision": "A 1-2 sentence vision statement for the next 6-12 months that aligns with their goals and values",
  "intensity": "low" or "standard" or "high" (choose based on their current stress/anxiety levels - if stress > 7 or anxiety > 7, use "low"),
  "milestones": [
    {
      "title": "Month 1 milestone title",
      "description": "Specific, measurable milestone",
      "targetDate": "YYYY-MM-DD" (30 days from now)
    },
    {
      "title": "Month 2 milestone title",
      "description": "Specific, measurable milestone",
      "targetDate": "YYYY-MM-DD" (60 days from now)
    },
    {
      "title": "Month 3 milestone title",
      "description": "Specific, measurable milestone",
      "targetDate": "YYYY-MM-DD" (90 days from now)
    }
  ],
  "weeklyFocus": "A single theme for this week (e.g., 'Sleep discipline', 'Anxiety regulation', 'Strength routine')",
  "dailyTasks": [
    {
      "title": "Task name (very small, 2-10 minutes)",
      "description": "Why this matters",
      "estimatedMinutes": 5,
      "isAnchorWin": true or false (only one should be true - the most important),
      "category": "mental" or "physical" or "purpose" or "routine"
    }
  ]
}`

// GeneratedPlan is the JSON object the completion service is asked for.
type GeneratedPlan struct {
	Vision      string               `json:"vision"`
	Intensity   string               `json:"intensity"`
	Milestones  []GeneratedMilestone `json:"milestones"`
	WeeklyFocus string               `json:"weeklyFocus"`
	DailyTasks  []GeneratedTask      `json:"dailyTasks"`
}

type GeneratedMilestone struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetDate  string `json:"targetDate"`
}

type GeneratedTask struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	EstimatedMinutes float64 `json:"estimatedMinutes"`
	IsAnchorWin      bool    `json:"isAnchorWin"`
	Category         string  `json:"category"`
}

// ParsePlanResponse decodes the completion text. A response wrapped in a
// markdown code fence is accepted; anything else that is not a JSON object
// with at least one daily task is an error.
func ParsePlanResponse(raw string) (*GeneratedPlan, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return nil, errEmptyReply
	}
	var gp GeneratedPlan
	if err := json.Unmarshal([]byte(text), &gp); err != nil {
		return nil, fmt.Errorf("decode plan response: %w", err)
	}
	if len(gp.DailyTasks) == 0 {
		return nil, errNoTasks
	}
	return &gp, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// ToPlan applies the plan guardrails and builds the rows to persist. Times are
// computed relative to now in loc.
func (gp *GeneratedPlan) ToPlan(userID string, a *models.Assessment, now time.Time, loc *time.Location) (*models.GrowthPlan, error) {
	stressed := isHighStress(a)

	intensity := models.Intensity(strings.ToLower(strings.TrimSpace(gp.Intensity)))
	switch {
	case stressed:
		intensity = models.IntensityLow
	case !intensity.Valid():
		intensity = models.IntensityStandard
	}

	plan := &models.GrowthPlan{
		UserID:      userID,
		Vision:      strings.TrimSpace(gp.Vision),
		Intensity:   intensity,
		WeeklyFocus: strings.TrimSpace(gp.WeeklyFocus),
		IsActive:    true,
	}

	maxMinutes := maxTaskMinutes
	if stressed {
		maxMinutes = maxStressedTaskMinutes
	}
	anchorSeen := false
	for i, t := range gp.DailyTasks {
		category := models.TaskCategory(strings.ToLower(strings.TrimSpace(t.Category)))
		if !category.Valid() {
			category = models.CategoryRoutine
		}
		anchor := t.IsAnchorWin && !anchorSeen
		anchorSeen = anchorSeen || anchor
		plan.Tasks = append(plan.Tasks, models.Task{
			Title:            strings.TrimSpace(t.Title),
			Description:      strings.TrimSpace(t.Description),
			EstimatedMinutes: clampMinutes(t.EstimatedMinutes, maxMinutes),
			IsAnchorWin:      anchor,
			Category:         category,
			Order:            i,
		})
	}
	if len(plan.Tasks) == 0 {
		return nil, errNoTasks
	}
	if !anchorSeen {
		plan.Tasks[0].IsAnchorWin = true
	}

	today := startOfDay(now, loc)
	for i, m := range gp.Milestones {
		target, err := time.ParseInLocation(milestoneDateLayout, strings.TrimSpace(m.TargetDate), loc)
		if err != nil {
			target = today.AddDate(0, 0, 30*(i+1))
		}
		plan.Milestones = append(plan.Milestones, models.Milestone{
			Title:       strings.TrimSpace(m.Title),
			Description: strings.TrimSpace(m.Description),
			TargetDate:  target,
			Progress:    0,
		})
	}
	sort.SliceStable(plan.Milestones, func(i, j int) bool {
		return plan.Milestones[i].TargetDate.Before(plan.Milestones[j].TargetDate)
	})
	return plan, nil
}

func clampMinutes(v float64, upper int) int {
	if math.IsNaN(v) {
		return minTaskMinutes
	}
	m := int(math.Round(v))
	if m < minTaskMinutes {
		return minTaskMinutes
	}
	if m > upper {
		return upper
	}
	return m
}
