package model

// Compilation is a curated, optionally pinned, set of events.
type Compilation struct {
	ID       int64
	Title    string
	Pinned   bool
	EventIDs []int64
}

// NewCompilation is the payload for creating a compilation.
type NewCompilation struct {
	Title  string  `json:"title"`
	Pinned bool    `json:"pinned"`
	Events []int64 `json:"events"`
}

// UpdateCompilation is a partial compilation update.
type UpdateCompilation struct {
	Title  *string  `json:"title"`
	Pinned *bool    `json:"pinned"`
	Events *[]int64 `json:"events"`
}

// CompilationView is the wire view of a compilation.
type CompilationView struct {
	ID     int64        `json:"id"`
	Title  string       `json:"title"`
	Pinned bool         `json:"pinned"`
	Events []EventShort `json:"events"`
}
