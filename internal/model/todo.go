package model

import "time"

type Category string

const (
	CategoryUrgent    Category = "Urgent"
	CategoryNonUrgent Category = "Non-Urgent"
)

func (c Category) Valid() bool {
	return c == CategoryUrgent || c == CategoryNonUrgent
}

type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Category    Category   `json:"category"`
	Completed   bool       `json:"completed"`
	OwnerID     string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type OwnerSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TodoWithOwner is the list representation; Owner is only populated for
// admin listings.
type TodoWithOwner struct {
	Todo
	Owner *OwnerSummary `json:"user,omitempty"`
}
