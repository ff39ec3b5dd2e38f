package model

// Centralized icons for the UI components
// Using simple single-width characters for consistent terminal rendering
const (
	IconMarked    = "✓" // Marked for deletion
	IconSystem    = "⛔" // System-owned, never deletable
	IconDuplicate = "≈" // Almost equal (duplicated across venvs)
	IconConflict  = "!" // Version conflict
	IconMissing   = "✗" // Thin X (no runnable interpreter)
	IconOK        = " " // Space (OK - no icon to reduce noise)
)
