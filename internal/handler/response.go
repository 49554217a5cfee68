package handler

// Every endpoint answers with the same envelope: {ok:true, result:...} or
// {ok:false, error:"..."}.

type SuccessResponse struct {
	OK     bool        `json:"ok"`
	Result interface{} `json:"result"`
}

func NewSuccessResponse(result interface{}) SuccessResponse {
	return SuccessResponse{OK: true, Result: result}
}

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{OK: false, Error: message}
}
