package domain

type StatusCount struct {
	Status TodoStatus `db:"status" json:"status"`
	Count  int        `db:"count" json:"count"`
}

type PriorityCount struct {
	Priority TodoPriority `db:"priority" json:"priority"`
	Count    int          `db:"count" json:"count"`
}
