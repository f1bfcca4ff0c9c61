package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cartlog/internal/audit"
	"cartlog/internal/list"
	"cartlog/internal/platform/device"
	dErrors "cartlog/pkg/domain-errors"
	"cartlog/pkg/requestcontext"
)

type itemResponse struct {
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	Items     []itemResponse `json:"items"`
}

type entryResponse struct {
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	ListID    string    `json:"list_id"`
	ListName  string    `json:"list_name"`
	ItemName  string    `json:"item_name,omitempty"`
	Value     int64     `json:"value"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	// Device is derived from UserAgent at render time, never stored.
	Device string `json:"device,omitempty"`
}

type mutationResponse struct {
	List  listResponse  `json:"list"`
	Entry entryResponse `json:"entry"`
}

type deleteResponse struct {
	Entry entryResponse `json:"entry"`
}

type entriesResponse struct {
	Entries []entryResponse `json:"entries"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toListResponse(l list.List) listResponse {
	resp := listResponse{
		ID:        l.ID.String(),
		Name:      l.Name,
		CreatedAt: l.CreatedAt,
		Items:     []itemResponse{},
	}
	for _, it := range l.Items {
		resp.Items = append(resp.Items, itemResponse{Name: it.Name, Quantity: it.Quantity, UpdatedAt: it.UpdatedAt})
	}
	return resp
}

func toEntryResponse(e audit.Entry) entryResponse {
	resp := entryResponse{
		Sequence:  e.Sequence,
		Timestamp: e.Timestamp,
		Action:    string(e.Action),
		ListID:    e.ListID.String(),
		ListName:  e.ListName,
		ItemName:  e.ItemName,
		Value:     e.Value,
		IP:        e.IP,
		UserAgent: e.UserAgent,
	}
	if e.Location != nil {
		lat, lng := e.Location.Lat, e.Location.Lng
		resp.Lat, resp.Lng = &lat, &lng
	}
	if e.UserAgent != "" {
		resp.Device = device.Describe(e.UserAgent)
	}
	return resp
}

func toEntriesResponse(entries []audit.Entry) entriesResponse {
	resp := entriesResponse{Entries: []entryResponse{}}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toEntryResponse(e))
	}
	return resp
}

// statusForCode maps domain error codes to HTTP statuses. The taxonomy is
// closed; anything uncoded is an internal error.
func statusForCode(code dErrors.Code) int {
	switch code {
	case dErrors.CodeDuplicateList:
		return http.StatusConflict
	case dErrors.CodeListNotFound, dErrors.CodeItemNotFound:
		return http.StatusNotFound
	case dErrors.CodeInvalidQuantity, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeQuantityOverflow:
		return http.StatusUnprocessableEntity
	case dErrors.CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	status := statusForCode(code)

	message := "internal error"
	var de *dErrors.Error
	if errors.As(err, &de) {
		message = de.Message
	}

	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"code", string(code),
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(r.Context(), "request rejected",
			"path", r.URL.Path,
			"code", string(code),
			"request_id", requestcontext.RequestID(r.Context()),
		)
	}

	h.writeJSON(w, status, errorResponse{Error: errorBody{Code: string(code), Message: message}})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encode response", "error", err.Error())
	}
}
