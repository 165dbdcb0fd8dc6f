package http

import (
	"encoding/json"
	"net/http"

	apperrors "fleetbook/pkg/errors"
)

// Response is the uniform envelope every endpoint returns.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type PaginatedData struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteError maps an error to its HTTP status. Non-AppError values are
// masked behind a generic message so provider internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	appErr := apperrors.AsAppError(err)

	message := appErr.Message
	if appErr.Code == apperrors.CodeInternal || appErr.Code == apperrors.CodeProvider {
		message = "Something went wrong, please try again"
	}

	WriteJSON(w, appErr.StatusCode(), Response{
		Success: false,
		Message: message,
		Data:    appErr.Details,
	})
}

func WriteSuccess(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func WriteCreated(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func WritePaginated(w http.ResponseWriter, message string, items any, totalCount int64, limit int, offset int64) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data: PaginatedData{
			Items:      items,
			TotalCount: totalCount,
			Limit:      limit,
			Offset:     offset,
		},
	})
}
