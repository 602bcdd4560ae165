package mine

// Category is a curated keyword vocabulary.
type Category struct {
	Name     string
	Keywords []string
}

// Fixed category names.
const (
	CategoryType     = "type"
	CategoryStatus   = "status"
	CategoryPriority = "priority"
)

// TypeCategory lists kinds of work item.
func TypeCategory() Category {
	return Category{
		Name:     CategoryType,
		Keywords: []string{"Improvement", "Bug", "Change Request", "Task", "Feature", "Epic", "Story", "Sub-task"},
	}
}

// StatusCategory lists workflow states.
func StatusCategory() Category {
	return Category{
		Name:     CategoryStatus,
		Keywords: []string{"Open", "In Progress", "Closed", "Reopened", "Resolved", "Done", "To Do", "Blocked", "In Review"},
	}
}

// PriorityCategory lists priority levels.
func PriorityCategory() Category {
	return Category{
		Name:     CategoryPriority,
		Keywords: []string{"Critical", "High", "Medium", "Low", "Blocker", "Major", "Minor", "Trivial"},
	}
}

// Categories returns the three categories in evaluation order.
func Categories() []Category {
	return []Category{TypeCategory(), StatusCategory(), PriorityCategory()}
}
