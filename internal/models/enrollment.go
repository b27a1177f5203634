package models

// Enrollment links a student to a course. Student name and course name, fee
// and duration are denormalized snapshots taken at enrollment time so later
// course edits never change what an existing enrollee owes.
type Enrollment struct {
	ID             int64  `db:"id" json:"id"`
	StudentID      int64  `db:"student_id" json:"student_id"`
	StudentName    string `db:"student_name" json:"student_name"`
	CourseName     string `db:"course_name" json:"course_name"`
	CourseFee      int64  `db:"course_fee" json:"course_fee"`
	CourseDuration int    `db:"course_duration" json:"course_duration"`
	EnrollmentDate string `db:"enrollment_date" json:"enrollment_date"`
}

// EnrollmentBalance is an enrollment with its payment total aggregated.
type EnrollmentBalance struct {
	EnrollmentID int64  `db:"id" json:"enrollment_id"`
	CourseName   string `db:"course_name" json:"course_name"`
	CourseFee    int64  `db:"course_fee" json:"course_fee"`
	TotalPaid    int64  `db:"total_paid" json:"total_paid"`
}
