package dto

// ErrorResponse is the envelope for every failed request except payment
// verification, which answers with VerifyResponse.
type ErrorResponse struct {
	Success   bool       `json:"success"`
	Error     *ErrorInfo `json:"error"`
	RequestID string     `json:"request_id,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Details string             `json:"details,omitempty"`
	Fields  []ValidationDetail `json:"fields,omitempty"`
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response tagged with the request id
func NewErrorResponseWithRequestID(code, message, requestID string) ErrorResponse {
	resp := NewErrorResponse(code, message)
	resp.RequestID = requestID
	return resp
}

// WithDetails returns a copy of the response carrying details
func (r ErrorResponse) WithDetails(details string) ErrorResponse {
	info := *r.Error
	info.Details = details
	r.Error = &info
	return r
}

// NewValidationErrorResponse creates a 400 response listing the rejected fields.
// The first field message doubles as details so simple clients can show it.
func NewValidationErrorResponse(message, requestID string, fields []ValidationDetail) ErrorResponse {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Fields = fields
	if len(fields) > 0 {
		resp.Error.Details = fields[0].Message
	}
	return resp
}
