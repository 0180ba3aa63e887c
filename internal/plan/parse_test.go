package plan

import (
	"strings"
	"testing"
)

func TestParseSteps_SplitsOnLabels(t *testing.T) {
	raw := "Step 1: Install the authentication dependencies first\n" +
		"Step 2: Create the token signing middleware module"
	steps := ParseSteps(raw)
	if len(steps) != 2 {
		t.Fatalf("len=%d, want 2 (steps=%q)", len(steps), steps)
	}
	if steps[0] != "Install the authentication dependencies first" {
		t.Fatalf("steps[0]=%q", steps[0])
	}
	if steps[1] != "Create the token signing middleware module" {
		t.Fatalf("steps[1]=%q", steps[1])
	}
}

func TestParseSteps_LengthThreshold(t *testing.T) {
	// Exactly 20 runes is dropped, 21 is kept.
	twenty := strings.Repeat("a", 20)
	twentyOne := strings.Repeat("b", 21)
	raw := "Step 1: " + twenty + "\nStep 2: " + twentyOne
	steps := ParseSteps(raw)
	if len(steps) != 1 {
		t.Fatalf("len=%d, want 1 (steps=%q)", len(steps), steps)
	}
	if steps[0] != twentyOne {
		t.Fatalf("steps[0]=%q, want the 21-rune body", steps[0])
	}
}

func TestParseSteps_ThresholdAppliesAfterTrim(t *testing.T) {
	// 20 runes padded with whitespace still measures 20 and is dropped.
	padded := "  " + strings.Repeat("c", 20) + "  \n"
	steps := ParseSteps("Step 1:" + padded)
	if len(steps) != 0 {
		t.Fatalf("len=%d, want 0 (steps=%q)", len(steps), steps)
	}
}

func TestParseSteps_CaseInsensitiveLabels(t *testing.T) {
	raw := "STEP 1: Uppercase label body long enough to keep\n" +
		"step 2: lowercase label body long enough to keep"
	steps := ParseSteps(raw)
	if len(steps) != 2 {
		t.Fatalf("len=%d, want 2 (steps=%q)", len(steps), steps)
	}
}

func TestParseSteps_IgnoresPreamble(t *testing.T) {
	raw := "Here is the plan you asked for:\n\n" +
		"Step 1: The only real step body in this output"
	steps := ParseSteps(raw)
	if len(steps) != 1 {
		t.Fatalf("len=%d, want 1 (steps=%q)", len(steps), steps)
	}
	if strings.Contains(steps[0], "Here is the plan") {
		t.Fatalf("preamble leaked into body: %q", steps[0])
	}
}

func TestParseSteps_NoLabels(t *testing.T) {
	if steps := ParseSteps("no labels anywhere in this text"); len(steps) != 0 {
		t.Fatalf("len=%d, want 0", len(steps))
	}
	if steps := ParseSteps(""); len(steps) != 0 {
		t.Fatalf("empty input len=%d, want 0", len(steps))
	}
}

func TestParseSteps_MultilineBodies(t *testing.T) {
	raw := "Step 1: First line of the body\ncontinues on a second line\n" +
		"Step 2: Another body that is certainly long enough"
	steps := ParseSteps(raw)
	if len(steps) != 2 {
		t.Fatalf("len=%d, want 2", len(steps))
	}
	if !strings.Contains(steps[0], "second line") {
		t.Fatalf("body lost its continuation line: %q", steps[0])
	}
}

func TestParseSteps_JWTScenario(t *testing.T) {
	// Task "Add JWT auth": one body over the threshold, one under.
	raw := "Step 1: Install deps jsonwebtoken and bcrypt\nStep 2: Too short"
	steps := ParseSteps(raw)
	if len(steps) != 1 {
		t.Fatalf("len=%d, want 1 (steps=%q)", len(steps), steps)
	}
	if steps[0] != "Install deps jsonwebtoken and bcrypt" {
		t.Fatalf("steps[0]=%q", steps[0])
	}
}
