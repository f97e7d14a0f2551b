package domain

type Product struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Price       float64 `json:"price"`
}

// PagedProducts is the catalog listing envelope as served by the backend.
type PagedProducts struct {
	Data          []Product `json:"data"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	PageNumber    int       `json:"pageNumber"`
	IsFirst       bool      `json:"isFirst"`
	IsLast        bool      `json:"isLast"`
	HasNext       bool      `json:"hasNext"`
	HasPrevious   bool      `json:"hasPrevious"`
}
