package dto

type QueryRequest struct {
	Query  string                 `json:"query" validate:"required"`
	Params map[string]interface{} `json:"params"`
}
