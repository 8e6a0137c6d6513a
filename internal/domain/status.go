package domain

// Status is the learning state of a memory item.
//
// Learning, reviewing and mastered are derived from the item's stage.
// Archived is an orthogonal flag that only external collaborators toggle.
type Status string

// Possible status values
const (
	StatusLearning  Status = "learning"
	StatusReviewing Status = "reviewing"
	StatusMastered  Status = "mastered"
	StatusArchived  Status = "archived"
)

// MasteredStage is the lowest stage at which an item counts as mastered.
const MasteredStage = 3

// StatusForStage derives the scheduling status from a stage index.
// It never returns StatusArchived.
func StatusForStage(stage int) Status {
	switch {
	case stage >= MasteredStage:
		return StatusMastered
	case stage > 0:
		return StatusReviewing
	default:
		return StatusLearning
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusLearning, StatusReviewing, StatusMastered, StatusArchived:
		return true
	default:
		return false
	}
}
