package model

// Enrollment is a student's membership in a class.
type Enrollment struct {
	ClassCode string `json:"code"`
	EUID      string `json:"euid"`
}

// EnrollInClassRequest is the payload for a student enrolling themselves in a class.
type EnrollInClassRequest struct {
	Code string `json:"code" binding:"required,classcode"`
}

// StudentClass is a class as seen from an enrolled student.
type StudentClass struct {
	Code          string  `json:"code"`
	ProfessorEUID string  `json:"professor_euid"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
}
