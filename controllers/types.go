package controllers

type StandardResponse struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	Message    string          `json:"message,omitempty"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
}

func newPagination(page, pageSize int, total int64) *PaginationMeta {
	return &PaginationMeta{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  total,
		TotalPages:  int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}

type ResolveRequest struct {
	Token string `json:"token" binding:"required"`
}

type PrivacyRequest struct {
	Private *bool `json:"private" binding:"required"`
}

type CreatePostRequest struct {
	Content       string `json:"content" binding:"required,max=5000"`
	Draft         bool   `json:"draft"`
	AllowComments *bool  `json:"allowComments"`
}

// UpdatePostRequest carries a partial edit. Omitted fields are kept.
type UpdatePostRequest struct {
	Content       *string `json:"content" binding:"omitempty,min=1,max=5000"`
	Draft         *bool   `json:"draft"`
	AllowComments *bool   `json:"allowComments"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=255"`
}

type LikeRequest struct {
	Reaction string `json:"reaction" binding:"omitempty,oneof=like dislike"`
}
