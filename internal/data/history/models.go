package history

import "time"

// Run is one pass over a crate.
type Run struct {
	ID         string
	Project    string
	Crate      string
	StartedAt  time.Time
	FinishedAt time.Time
	Modules    int
	Functions  int
	Emitted    int
	Skipped    int
	Failed     int
}

// Context summarizes one emitted focal context.
type Context struct {
	RunID      string
	Function   string
	Types      int
	Functions  int
	Unresolved int
}
