package model

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type FindGenre struct {
	ID *int
	// Name and NameContains match case-insensitively.
	Name         *string
	NameContains *string
	IDs          []int
}

type GenreRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type Language struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type FindLanguage struct {
	ID *int
	// Name matches case-insensitively.
	Name *string
}

type LanguageRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}
