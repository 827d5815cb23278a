package model //import "github.com/Xunop/e-library/internal/model"

type Book struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	AuthorID   *int   `json:"author_id"`
	Summary    string `json:"summary"`
	ISBN       string `json:"isbn"`
	LanguageID *int   `json:"language_id"`

	// Joined for listings.
	AuthorName   string `json:"author,omitempty"`
	LanguageName string `json:"language,omitempty"`
	// DisplayGenre lists the first genres, as the catalog listing shows them.
	DisplayGenre string   `json:"display_genre"`
	Genres       []*Genre `json:"genres,omitempty"`

	// Instances is only filled on the detail view.
	Instances []*BookInstance `json:"instances,omitempty"`
}

type FindBook struct {
	ID       *int
	AuthorID *int
	// TitleContains matches case-insensitively.
	TitleContains *string

	Limit  *int
	Offset *int
}

type BookRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	AuthorID   *int   `json:"author_id" validate:"omitempty,gt=0"`
	Summary    string `json:"summary" validate:"max=1000"`
	ISBN       string `json:"isbn" validate:"required,len=13,numeric"`
	GenreIDs   []int  `json:"genre_ids" validate:"dive,gt=0"`
	LanguageID *int   `json:"language_id" validate:"omitempty,gt=0"`
}
