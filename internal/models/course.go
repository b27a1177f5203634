package models

// Course is an offering students can enrol in. Fee is stored in whole rupees.
type Course struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Fee      int64  `db:"fee" json:"fee"`
	Duration int    `db:"duration" json:"duration"`
}
