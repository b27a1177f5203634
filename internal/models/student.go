package models

// Student is a learner registered with the institute. StudentID is the
// human-facing year-scoped identifier (STU<year>-NNNN); ID is the storage key.
type Student struct {
	ID        int64  `db:"id" json:"id"`
	StudentID string `db:"student_id" json:"student_id"`
	Name      string `db:"name" json:"name"`
	Phone     string `db:"phone" json:"phone"`
	Email     string `db:"email" json:"email,omitempty"`
	Address   string `db:"address" json:"address,omitempty"`
}
