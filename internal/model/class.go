package model

import "time"

// ClassInfo is a class identified by a code such as "csce_4900_500".
type ClassInfo struct {
	Code              string    `json:"code"`
	ProfessorEUID     string    `json:"professor_euid"`
	Lat               float64   `json:"lat"`
	Lon               float64   `json:"lon"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	JoinCode          string    `json:"-"`
	JoinCodeCreatedAt time.Time `json:"-"`
}

// WeeklySchedule is one meeting weekday of a class.
type WeeklySchedule struct {
	ClassCode string `json:"code"`
	Weekday   string `json:"day"`
	Time      string `json:"time"`
}

// JoinCode is a class enrollment secret and its creation time.
type JoinCode struct {
	Code      string    `json:"join_code"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateClassRequest is the payload for creating a class with its weekly schedule.
// Times maps an English weekday name to a 24-hour "HH:MM:SS" meeting time.
type CreateClassRequest struct {
	Code      string            `json:"code" binding:"required,classcode"`
	EUID      string            `json:"euid" binding:"required,euid"`
	Location  []float64         `json:"location" binding:"required,latlon"`
	StartDate string            `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string            `json:"end_date" binding:"required,datetime=2006-01-02"`
	Times     map[string]string `json:"times" binding:"required,min=1,max=7,dive,keys,weekday,endkeys,hhmmss"`
}

// CreateClassResponse is returned after a class and its sessions are committed.
type CreateClassResponse struct {
	SessionsCreated int    `json:"sessions_created"`
	JoinCode        string `json:"join_code"`
}
