package domain

import "time"

// Queue is a named FIFO line of tickets owned by the user who created it.
type Queue struct {
	ID        string
	Name      string
	CreatedBy string
	Active    bool
	CreatedAt time.Time
}

// CanManage reports whether the user may mutate or delete the queue.
// Only the owner or an admin qualifies.
func (q *Queue) CanManage(u *User) bool {
	if u == nil {
		return false
	}
	return u.IsAdmin() || q.CreatedBy == u.ID
}
