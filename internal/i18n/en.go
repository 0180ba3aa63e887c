package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// Step statuses
	"status.pending":  "pending",
	"status.accepted": "accepted",
	"status.rejected": "rejected",
	"status.edited":   "edited",
	"status.refining": "refining",

	// Plan cards
	"card.step":       "Step %d",
	"card.refine_err": "Could not generate an alternative: %s",
	"card.empty":      "No steps left. Press o to add one.",

	// Sidebar
	"sidebar.task":     "Task",
	"sidebar.progress": "Progress",
	"sidebar.steps":    "Steps",
	"sidebar.model":    "Model",
	"sidebar.usage":    "Tokens",
	"sidebar.session":  "+%d this session",
	"sidebar.export":   "Last export",

	// Status bar
	"statusbar.ready":         "Ready",
	"statusbar.refining":      "Regenerating step %d...",
	"statusbar.saved":         "Plan exported to %s",
	"statusbar.save_failed":   "Export failed: %s",
	"statusbar.clipboard_ok":  "Step copied to clipboard",
	"statusbar.clipboard_err": "Clipboard write failed: %s",
	"statusbar.deleted":       "Step deleted",
	"statusbar.reordered":     "Step moved",

	// Generation phases
	"gen.collecting": "Collecting project context...",
	"gen.generating": "Generating plan with %s...",
	"gen.failed":     "Plan generation failed: %s",
	"gen.empty":      "The model returned no usable steps. Try rephrasing the task.",
	"gen.done":       "Plan ready: %d steps",

	// Edit / insert modes
	"edit.title":  "Edit step %d",
	"edit.hint":   "ctrl+s save · esc cancel",
	"add.title":   "New step after %d",
	"add.title_0": "New step at top",
	"move.hint":   "↑/↓ move · enter drop · esc cancel",

	// Keybindings
	"keys.accept":        "accept",
	"keys.reject":        "reject & regenerate",
	"keys.edit":          "edit",
	"keys.add":           "insert",
	"keys.delete":        "delete",
	"keys.move":          "move",
	"keys.save":          "export",
	"keys.clipboard":     "copy step",
	"keys.clipboard_all": "copy document",
	"keys.help":          "help",
	"keys.quit":          "quit",

	// Help overlay
	"help.title": "Plan editing keys",

	// Task prompt
	"prompt.task":      "Describe the task to plan",
	"prompt.too_short": "Task description must be at least %d characters",
	"prompt.recent":    "Recent tasks:",

	// Export document
	"export.title":    "Implementation Plan",
	"export.task":     "Task",
	"export.progress": "%d of %d steps accepted (%d%%)",

	// Errors
	"error.provider": "Provider error: %s",
	"error.storage":  "Storage error: %s",

	// Model
	"model.switched": "Model switched to: %s",
}
