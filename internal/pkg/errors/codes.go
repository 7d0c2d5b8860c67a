package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer = 1000
	ErrInvalidParams  = 1001
	ErrNotFound       = 1002
	ErrBadRequest     = 1003
	ErrServiceUnavail = 1004

	// Asset errors (2000-2999)
	ErrAssetInvalidFileType = 2000
	ErrAssetInvalidID       = 2001
	ErrAssetNotFound        = 2002
	ErrAssetFileNotFound    = 2003
	ErrAssetFileTooLarge    = 2004

	// Storage errors (3000-3999)
	ErrStorageWriteFailed = 3000
	ErrStorageReadFailed  = 3001

	// Metadata store errors (4000-4999)
	ErrDatabaseUnavailable = 4000
	ErrDatabaseQueryFailed = 4001
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer: {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:  {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:       {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrBadRequest:     {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail: {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	// Asset errors
	ErrAssetInvalidFileType: {ErrAssetInvalidFileType, http.StatusBadRequest, "Only .glb, .gltf, .usdz files are supported"},
	ErrAssetInvalidID:       {ErrAssetInvalidID, http.StatusBadRequest, "Invalid id"},
	ErrAssetNotFound:        {ErrAssetNotFound, http.StatusNotFound, "Not found or expired"},
	ErrAssetFileNotFound:    {ErrAssetFileNotFound, http.StatusNotFound, "File not found"},
	ErrAssetFileTooLarge:    {ErrAssetFileTooLarge, http.StatusBadRequest, "File size exceeds limit"},

	// Storage errors
	ErrStorageWriteFailed: {ErrStorageWriteFailed, http.StatusInternalServerError, "Storage write failed"},
	ErrStorageReadFailed:  {ErrStorageReadFailed, http.StatusInternalServerError, "Storage read failed"},

	// Metadata store errors
	ErrDatabaseUnavailable: {ErrDatabaseUnavailable, http.StatusServiceUnavailable, "Metadata store unavailable"},
	ErrDatabaseQueryFailed: {ErrDatabaseQueryFailed, http.StatusInternalServerError, "Metadata store operation failed"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
