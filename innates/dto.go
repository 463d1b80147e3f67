package innates

// NewInnateRequest carries the fields for creating an innate.
type NewInnateRequest struct {
	Title   string `json:"title" example:"My first innate"`
	Innated string `json:"innated" example:"Something worth writing down."`
}

// UpdateInnateRequest carries replacement content for an existing innate.
type UpdateInnateRequest struct {
	Title   string `json:"title" example:"Revised title"`
	Innated string `json:"innated" example:"Revised body."`
}

// PaginatedInnatesResponse is a single page of innates plus paging metadata.
type PaginatedInnatesResponse struct {
	Innates    []Innate `json:"innates"`
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
	Total      int      `json:"total"`
	TotalPages int      `json:"total_pages"`
}
