package dto

type ChatRequest struct {
	Query string `json:"query"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

type SourceInfo struct {
	Source      string `json:"source"`
	FileHash    string `json:"fileHash"`
	TotalChunks int    `json:"totalChunks"`
	UploadDate  string `json:"uploadDate"`
}

type ListSourcesResponse struct {
	Data []SourceInfo `json:"data"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
