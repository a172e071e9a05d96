// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

// Difficulty is the skill level a roadmap module is aimed at.
//
// WHY A STRING TYPE (not iota)?
// The difficulty values appear verbatim in the catalog file, in JSON responses,
// and in prompts sent to the mentor model. Keeping them as named string
// constants means no translation layer between storage, API, and prompts.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Valid reports whether d is one of the three known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Category groups modules into the broad phases of the roadmap.
type Category string

const (
	CategoryFoundations Category = "foundations"
	CategoryFrontend    Category = "frontend"
	CategoryAI          Category = "ai"
	CategoryIntegration Category = "integration"
	CategoryCareer      Category = "career"
)

// Project is a hands-on build nested inside a module. Its position in the
// owning module's Projects slice is its identity — stable as long as the
// catalog is not edited.
type Project struct {
	Title            string   `json:"title"            yaml:"title"`
	Desc             string   `json:"desc"             yaml:"desc"`
	LearningOutcomes []string `json:"learningOutcomes" yaml:"learningOutcomes"`
	TechFocus        []string `json:"techFocus"        yaml:"techFocus"`
	Challenges       []string `json:"challenges"       yaml:"challenges"`
}

// Module is one step of the learning roadmap. Modules are immutable at
// runtime; identity is the ID string.
type Module struct {
	ID          string     `json:"id"          yaml:"id"`
	Title       string     `json:"title"       yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Duration    string     `json:"duration"    yaml:"duration"`
	Difficulty  Difficulty `json:"difficulty"  yaml:"difficulty"`
	Category    Category   `json:"category"    yaml:"category"`
	Topics      []string   `json:"topics"      yaml:"topics"`
	Projects    []Project  `json:"projects"    yaml:"projects"`
}

// TrackableItems is the number of checkable items that count towards the
// module's completion percentage: topics plus projects. Outcome and tech
// checklists are finer-grained tracking and deliberately excluded.
func (m *Module) TrackableItems() int {
	return len(m.Topics) + len(m.Projects)
}
