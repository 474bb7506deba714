package errors

const (
	HttpInternalError           = "internal_error"
	HttpInvalidPathError        = "invalid_path"
	HttpFeaturesNotFoundError   = "features_not_found"
	HttpMergedTableMissingError = "merged_table_unavailable"
)

// ErrorResponse is the error response body of the feature read API.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
