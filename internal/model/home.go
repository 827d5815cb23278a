package model

// CatalogCounts backs the home page.
type CatalogCounts struct {
	NumBooks              int `json:"num_books"`
	NumInstances          int `json:"num_instances"`
	NumInstancesAvailable int `json:"num_instances_available"`
	NumAuthors            int `json:"num_authors"`
	NumFictionGenres      int `json:"num_fiction_genres"`
	NumDragonBooks        int `json:"num_dragon_books"`
}

type Home struct {
	*CatalogCounts
	NumVisits int `json:"num_visits"`
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
}

// NewPage expects items fetched with a limit of size+1 so it can tell
// whether a next page exists.
func NewPage[T any](items []T, page, size int) *Page[T] {
	p := &Page[T]{Items: items, Page: page, PageSize: size}
	if len(items) > size {
		p.Items = items[:size]
		p.HasNext = true
	}
	if p.Items == nil {
		p.Items = []T{}
	}
	return p
}
