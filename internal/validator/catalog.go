package validator

import (
	"context"
	"strconv"

	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/store"
)

func ValidateAuthorRequest(req *model.AuthorRequest) error {
	if err := ValidateStruct(req); err != nil {
		return err
	}
	if req.DateOfBirth != nil && req.DateOfDeath != nil && req.DateOfDeath.Before(*req.DateOfBirth) {
		return NewFieldError("date_of_death", "Date of death must not be before date of birth.")
	}
	return nil
}

// ValidateBookRequest also checks that the referenced author, language and
// genres exist.
func ValidateBookRequest(ctx context.Context, s *store.Store, req *model.BookRequest) error {
	if err := ValidateStruct(req); err != nil {
		return err
	}
	if req.AuthorID != nil {
		author, err := s.GetAuthor(ctx, &model.FindAuthor{ID: req.AuthorID})
		if err != nil {
			return err
		}
		if author == nil {
			return NewFieldError("author_id", invalidChoice)
		}
	}
	if req.LanguageID != nil {
		language, err := s.GetLanguage(ctx, &model.FindLanguage{ID: req.LanguageID})
		if err != nil {
			return err
		}
		if language == nil {
			return NewFieldError("language_id", invalidChoice)
		}
	}
	if len(req.GenreIDs) > 0 {
		genres, err := s.ListGenres(ctx, &model.FindGenre{IDs: req.GenreIDs})
		if err != nil {
			return err
		}
		found := make(map[int]bool, len(genres))
		for _, genre := range genres {
			found[genre.ID] = true
		}
		for _, id := range req.GenreIDs {
			if !found[id] {
				return NewFieldError("genre_ids", "Select a valid choice. "+strconv.Itoa(id)+" is not one of the available choices.")
			}
		}
	}
	return nil
}

// ValidateGenreRequest rejects names that already exist, ignoring case.
func ValidateGenreRequest(ctx context.Context, s *store.Store, req *model.GenreRequest) error {
	if err := ValidateStruct(req); err != nil {
		return err
	}
	genre, err := s.GetGenre(ctx, &model.FindGenre{Name: &req.Name})
	if err != nil {
		return err
	}
	if genre != nil {
		return NewFieldError("name", "Genre already exists (case insensitive match)")
	}
	return nil
}

func ValidateLanguageRequest(ctx context.Context, s *store.Store, req *model.LanguageRequest) error {
	if err := ValidateStruct(req); err != nil {
		return err
	}
	language, err := s.GetLanguage(ctx, &model.FindLanguage{Name: &req.Name})
	if err != nil {
		return err
	}
	if language != nil {
		return NewFieldError("name", "Language already exists (case insensitive match)")
	}
	return nil
}
