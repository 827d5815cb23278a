package model

import (
	"encoding/json"
	"strings"
)

type Author struct {
	ID          int    `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth *Date  `json:"date_of_birth"`
	DateOfDeath *Date  `json:"date_of_death"`

	// Books is only filled on the detail view.
	Books []*Book `json:"books,omitempty"`
}

// DisplayName is "last, first" as shown in listings.
func (a *Author) DisplayName() string {
	return a.LastName + ", " + a.FirstName
}

// Lifespan is "birth - death", with an unknown side left blank.
func (a *Author) Lifespan() string {
	if a.DateOfBirth == nil && a.DateOfDeath == nil {
		return ""
	}
	var birth, death string
	if a.DateOfBirth != nil {
		birth = a.DateOfBirth.String()
	}
	if a.DateOfDeath != nil {
		death = a.DateOfDeath.String()
	}
	return strings.TrimSpace(birth + " - " + death)
}

func (a Author) MarshalJSON() ([]byte, error) {
	type author Author
	return json.Marshal(struct {
		author
		DisplayName string `json:"display_name"`
		Lifespan    string `json:"lifespan"`
	}{author(a), a.DisplayName(), a.Lifespan()})
}

type FindAuthor struct {
	ID *int

	Limit  *int
	Offset *int
}

type AuthorRequest struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	DateOfBirth *Date  `json:"date_of_birth"`
	DateOfDeath *Date  `json:"date_of_death"`
}
