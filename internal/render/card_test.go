package render

import (
	"strings"
	"testing"

	"plancraft/internal/i18n"
	"plancraft/internal/plan"
)

func init() {
	i18n.Init("en")
}

func TestStatusIcon_AllDistinct(t *testing.T) {
	statuses := []plan.Status{
		plan.StatusUnset,
		plan.StatusAccepted,
		plan.StatusRejected,
		plan.StatusEdited,
		plan.StatusRefining,
	}
	seen := make(map[string]plan.Status, len(statuses))
	for _, s := range statuses {
		icon := StatusIcon(s)
		if icon == "" {
			t.Fatalf("StatusIcon(%q) is empty", s)
		}
		if prev, dup := seen[icon]; dup {
			t.Fatalf("icon %q shared by %q and %q", icon, prev, s)
		}
		seen[icon] = s
	}
}

func TestCardHeader(t *testing.T) {
	step := plan.Step{ID: "x", Content: "whatever", Status: plan.StatusAccepted, DisplayIndex: 3}
	got := CardHeader(step)
	if !strings.Contains(got, "Step 3") {
		t.Fatalf("CardHeader=%q, missing index", got)
	}
	if !strings.Contains(got, "accepted") {
		t.Fatalf("CardHeader=%q, missing label", got)
	}
	if !strings.HasPrefix(got, "✓") {
		t.Fatalf("CardHeader=%q, missing icon", got)
	}
}

func TestCard_HeaderPlusBody(t *testing.T) {
	step := plan.Step{ID: "x", Content: "## Plan\n* do it", Status: plan.StatusUnset, DisplayIndex: 1}
	got := Card(step)
	if !strings.HasPrefix(got, "### ○ Step 1") {
		t.Fatalf("Card=%q, bad header", got)
	}
	if !strings.Contains(got, "\n\nPlan\n- do it") {
		t.Fatalf("Card=%q, body not normalized", got)
	}
}

func TestDocument_SharesCardPath(t *testing.T) {
	state := plan.New("Build the importer end to end", []string{
		"Set up the repository and continuous integration.",
		"Implement the CSV reader with streaming parsing.",
	})
	state.Accept(state.Steps[0].ID)

	doc := Document(state)

	if !strings.Contains(doc, "# Implementation Plan") {
		t.Fatalf("missing title:\n%s", doc)
	}
	if !strings.Contains(doc, "Build the importer end to end") {
		t.Fatalf("missing task:\n%s", doc)
	}
	if !strings.Contains(doc, "1 of 2 steps accepted (50%)") {
		t.Fatalf("missing progress line:\n%s", doc)
	}
	// 每张卡片都必须逐字出现：导出与实时视图共用同一条渲染路径
	// every card must appear verbatim: export and live view share one path
	for _, step := range state.Steps {
		if !strings.Contains(doc, Card(step)) {
			t.Fatalf("card for step %d not in document:\n%s", step.DisplayIndex, doc)
		}
	}
}

func TestDocument_CompletionReDerived(t *testing.T) {
	state := plan.New("Tune the cache eviction policy", []string{
		"Measure the current hit rate under load.",
		"Prototype the replacement policy behind a flag.",
	})
	before := Document(state)
	if !strings.Contains(before, "0 of 2 steps accepted (0%)") {
		t.Fatalf("unexpected initial progress:\n%s", before)
	}

	state.Accept(state.Steps[0].ID)
	state.Accept(state.Steps[1].ID)
	after := Document(state)
	if !strings.Contains(after, "2 of 2 steps accepted (100%)") {
		t.Fatalf("progress not re-derived:\n%s", after)
	}
}

func TestDocument_EmptyPlan(t *testing.T) {
	state := plan.New("Anything valid and long enough", nil)
	doc := Document(state)
	if !strings.Contains(doc, "0 of 0 steps accepted (0%)") {
		t.Fatalf("empty plan progress wrong:\n%s", doc)
	}
}
