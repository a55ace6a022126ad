package brain

import "testing"

func TestGenerateModeDispatch(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{mode: ModeBasic, want: "basic"},
		{mode: ModeDecision, want: "decision"},
		{mode: ModeProblem, want: "problem_breaker"},
		{mode: ModeMoney, want: "money_brain"},
		{mode: ModeStudy, want: "study_brain"},
		{mode: ModeNoBullshit, want: "no_bullshit"},
		{mode: "unknown", want: "basic"},
		{mode: "", want: "basic"},
	}

	for _, tt := range tests {
		got := Generate("should I switch jobs", tt.mode)
		if got["type"] != tt.want {
			t.Fatalf("Generate(mode=%q) type = %v, want %q", tt.mode, got["type"], tt.want)
		}
	}
}

func TestMoneyBrainSplit(t *testing.T) {
	got := Generate("1000", ModeMoney)

	if got["amount"] != 1000 {
		t.Fatalf("amount = %v, want 1000", got["amount"])
	}
	split, ok := got["suggested_split"].(map[string]string)
	if !ok {
		t.Fatalf("suggested_split has unexpected type %T", got["suggested_split"])
	}
	if split["savings"] != "₹400" || split["learning"] != "₹400" || split["experiments"] != "₹200" {
		t.Fatalf("split = %v, want 40/40/20 of 1000", split)
	}
}

func TestMoneyBrainNonNumericAmount(t *testing.T) {
	got := Generate("how do I save money", ModeMoney)

	// Non-numeric questions fall back to a zero amount instead of failing.
	if got["amount"] != 0 {
		t.Fatalf("amount = %v, want 0", got["amount"])
	}
}

func TestGenerateEchoesQuestion(t *testing.T) {
	const question = "should I move cities"

	if got := Generate(question, ModeBasic); got["question"] != question {
		t.Fatalf("basic response lost the question")
	}
	if got := Generate(question, ModeDecision); got["problem"] != question {
		t.Fatalf("decision response lost the problem")
	}
	if got := Generate(question, ModeStudy); got["subject"] != question {
		t.Fatalf("study response lost the subject")
	}
}
