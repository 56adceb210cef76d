package model

import "time"

type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Class        string
	ProfilePhoto *string
	CreatedAt    time.Time
}

// ProfileUpdate overwrites every field; there is no partial update.
type ProfileUpdate struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

type Note struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Matiere     string    `json:"matiere"`
	Note        float64   `json:"note"`
	Coefficient float64   `json:"coefficient"`
	CreatedAt   time.Time `json:"created_at"`
}

type Course struct {
	ID        int64     `json:"id"`
	Matiere   string    `json:"matiere"`
	Classe    string    `json:"classe"`
	PDFPath   string    `json:"pdf_path"`
	CreatedAt time.Time `json:"created_at"`
}

type Contact struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
}
