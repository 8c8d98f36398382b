package constants

type TaskStatus string

const (
	StatusTodo TaskStatus = "todo"
	StatusDone TaskStatus = "done"
)

func (s TaskStatus) IsValid() bool {
	return s == StatusTodo || s == StatusDone
}

// ParseTaskStatus is case-sensitive: "Done" is not a status.
func ParseTaskStatus(v string) (TaskStatus, bool) {
	s := TaskStatus(v)
	return s, s.IsValid()
}
