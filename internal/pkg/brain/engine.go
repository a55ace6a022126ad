package brain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Response modes. Access to each mode is decided by the feature gate
// before the engine runs; the engine itself is pure templated lookup.
const (
	ModeBasic      = "basic"
	ModeDecision   = "decision"
	ModeStudy      = "study"
	ModeMoney      = "money"
	ModeProblem    = "problem"
	ModeNoBullshit = "nobullshit"
)

// Generate produces the structured response for a question in the given
// mode. Unknown modes fall back to the basic response. Stateless and safe
// under arbitrary concurrency.
func Generate(question, mode string) map[string]interface{} {
	switch mode {
	case ModeDecision:
		return decisionBrain(question)
	case ModeProblem:
		return problemBreaker(question)
	case ModeMoney:
		return moneyBrain(question)
	case ModeStudy:
		return studyBrain(question)
	case ModeNoBullshit:
		return noBullshitMode(question)
	default:
		return basicResponse(question)
	}
}

func basicResponse(question string) map[string]interface{} {
	return map[string]interface{}{
		"type":      "basic",
		"question":  question,
		"answer":    "Explain your problem clearly. Clarity itself solves 50% of problems.",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}

func decisionBrain(problem string) map[string]interface{} {
	return map[string]interface{}{
		"type":    "decision",
		"problem": problem,
		"analysis": map[string]interface{}{
			"pros":       []string{"Short-term clarity", "Predictable outcome"},
			"cons":       []string{"Risk involved", "Time & effort required"},
			"risk_level": "Medium",
			"logic":      "Decision should be based on long-term stability and skill growth",
		},
		"final_suggestion": "Choose the option that improves your skills and income stability over the next 12 months, not instant comfort.",
	}
}

func problemBreaker(problem string) map[string]interface{} {
	return map[string]interface{}{
		"type":    "problem_breaker",
		"problem": problem,
		"root_causes": []string{
			"Lack of clarity",
			"Poor daily structure",
			"Emotional overload",
		},
		"what_you_control": []string{
			"Daily routine",
			"Information intake",
			"Effort consistency",
		},
		"7_day_action_plan": []string{
			"Day 1: Write exact problem clearly",
			"Day 2: Remove 1 distraction",
			"Day 3: Fix sleep & wake time",
			"Day 4: Complete 1 hard task",
			"Day 5: Learn one missing skill",
			"Day 6: Review progress",
			"Day 7: Decide next direction",
		},
	}
}

func moneyBrain(question string) map[string]interface{} {
	amount, _ := strconv.Atoi(strings.TrimSpace(question))
	return map[string]interface{}{
		"type":   "money_brain",
		"amount": amount,
		"analysis": map[string]interface{}{
			"avoid": []string{
				"Impulse buying",
				"Online scams",
				"Fake get-rich-quick schemes",
			},
			"recommended_use": []string{
				"Skill learning",
				"Emergency savings",
				"Low-risk experiments",
			},
			"logic": "Money grows when combined with skill and patience, not shortcuts.",
		},
		"suggested_split": map[string]string{
			"savings":     fmt.Sprintf("₹%d", amount*40/100),
			"learning":    fmt.Sprintf("₹%d", amount*40/100),
			"experiments": fmt.Sprintf("₹%d", amount*20/100),
		},
	}
}

func studyBrain(subject string) map[string]interface{} {
	return map[string]interface{}{
		"type":    "study_brain",
		"subject": subject,
		"diagnosis": []string{
			"Concept clarity missing",
			"Revision inconsistency",
			"No test analysis",
		},
		"solution": []string{
			"Study concepts before memorizing",
			"Revise daily for 30 minutes",
			"Analyze mistakes weekly",
		},
		"7_day_study_plan": []string{
			"Day 1–2: Basics",
			"Day 3–4: Examples",
			"Day 5: Practice",
			"Day 6: Mock test",
			"Day 7: Analysis",
		},
	}
}

func noBullshitMode(problem string) map[string]interface{} {
	return map[string]interface{}{
		"type":    "no_bullshit",
		"problem": problem,
		"truth":   "You are not lazy. You are avoiding discomfort. Discomfort is required for growth.",
		"action": []string{
			"Stop overthinking",
			"Do the hardest task first",
			"Repeat daily without motivation",
		},
	}
}
