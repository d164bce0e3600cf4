package model

// AttendanceRecord marks whether a student attended a session.
// Identity is (SessionID, EUID).
type AttendanceRecord struct {
	SessionID int64  `json:"session_id"`
	EUID      string `json:"euid"`
	Attended  int    `json:"attended"`
}

// SubmitAttendanceRequest is one admission attempt: where the student is and what they look like.
type SubmitAttendanceRequest struct {
	Code     string    `json:"code" binding:"required,classcode"`
	EUID     string    `json:"euid" binding:"required,euid"`
	Location []float64 `json:"location" binding:"required,latlon"`
	Photo    string    `json:"photo" binding:"required,b64image"`
}

// ClassAttendanceDay lists the students who attended a class on one date.
type ClassAttendanceDay struct {
	Date     string   `json:"date"`
	Students []string `json:"students"`
}

// AttendanceEvent is published on a class's live feed after a successful admission.
type AttendanceEvent struct {
	Type      string `json:"type"`
	ClassCode string `json:"code"`
	EUID      string `json:"euid"`
	SessionID int64  `json:"session_id"`
	Date      string `json:"date"`
	At        string `json:"at"`
}
