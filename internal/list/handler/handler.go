// Package handler exposes the list service over HTTP. It owns routing,
// request decoding, geolocation extraction, and the mapping from domain
// error codes to status codes; all list semantics live in the service.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cartlog/internal/audit"
	"cartlog/internal/list"
	"cartlog/internal/platform/middleware"
	"cartlog/pkg/domain"
	dErrors "cartlog/pkg/domain-errors"
	"cartlog/pkg/requestcontext"
)

// Service defines the list operations the handler fronts.
type Service interface {
	CreateList(ctx context.Context, name string) (list.Result, error)
	DeleteList(ctx context.Context, name string) (list.Result, error)
	AddItem(ctx context.Context, listName, itemName string, quantity int64) (list.Result, error)
	SetQuantity(ctx context.Context, listName, itemName string, quantity int64) (list.Result, error)
	RemoveItem(ctx context.Context, listName, itemName string) (list.Result, error)
	Snapshot(ctx context.Context, name string) (list.List, error)
	History(ctx context.Context, name string) ([]audit.Entry, error)
	HistorySince(ctx context.Context, sequence int64) ([]audit.Entry, error)
}

// Handler handles list and history endpoints.
type Handler struct {
	logger *slog.Logger
	lists  Service
}

// New creates a list Handler.
func New(lists Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, lists: lists}
}

// Register mounts the list routes with the shared middleware chain.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.ClientMetadata)
	router.Use(middleware.Logger(h.logger))

	router.Post("/lists", h.handleCreateList)
	router.Get("/lists/{list}", h.handleSnapshot)
	router.Delete("/lists/{list}", h.handleDeleteList)
	router.Post("/lists/{list}/items", h.handleAddItem)
	router.Put("/lists/{list}/items/{item}", h.handleSetQuantity)
	router.Delete("/lists/{list}/items/{item}", h.handleRemoveItem)
	router.Get("/lists/{list}/history", h.handleHistory)
	router.Get("/history", h.handleHistorySince)

	r.Mount("/", router)
}

// geoRequest carries the optional device position every mutation body may
// include, mirroring how clients report it.
type geoRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// location validates the coordinate pair. Both absent means no fix; one
// absent is a malformed request.
func (g geoRequest) location() (*domain.Location, error) {
	if g.Lat == nil && g.Lng == nil {
		return nil, nil
	}
	if g.Lat == nil || g.Lng == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "lat and lng must be supplied together")
	}
	loc := &domain.Location{Lat: *g.Lat, Lng: *g.Lng}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	return loc, nil
}

type createListRequest struct {
	Name string `json:"name"`
	geoRequest
}

type addItemRequest struct {
	Name     string `json:"name"`
	Quantity *int64 `json:"quantity"`
	geoRequest
}

type setQuantityRequest struct {
	Quantity *int64 `json:"quantity"`
	geoRequest
}

func (h *Handler) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if !h.decode(w, r, &req) {
		return
	}
	ctx, ok := h.withLocation(w, r, req.geoRequest)
	if !ok {
		return
	}

	res, err := h.lists.CreateList(ctx, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, mutationResponse{List: toListResponse(res.List), Entry: toEntryResponse(res.Entry)})
}

func (h *Handler) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	var req geoRequest
	if !h.decodeOptional(w, r, &req) {
		return
	}
	ctx, ok := h.withLocation(w, r, req)
	if !ok {
		return
	}

	res, err := h.lists.DeleteList(ctx, chi.URLParam(r, "list"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, deleteResponse{Entry: toEntryResponse(res.Entry)})
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.lists.Snapshot(r.Context(), chi.URLParam(r, "list"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toListResponse(snapshot))
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	ctx, ok := h.withLocation(w, r, req.geoRequest)
	if !ok {
		return
	}

	quantity := int64(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	res, err := h.lists.AddItem(ctx, chi.URLParam(r, "list"), req.Name, quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mutationResponse{List: toListResponse(res.List), Entry: toEntryResponse(res.Entry)})
}

func (h *Handler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "quantity is required"))
		return
	}
	ctx, ok := h.withLocation(w, r, req.geoRequest)
	if !ok {
		return
	}

	res, err := h.lists.SetQuantity(ctx, chi.URLParam(r, "list"), chi.URLParam(r, "item"), *req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mutationResponse{List: toListResponse(res.List), Entry: toEntryResponse(res.Entry)})
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	var req geoRequest
	if !h.decodeOptional(w, r, &req) {
		return
	}
	ctx, ok := h.withLocation(w, r, req)
	if !ok {
		return
	}

	res, err := h.lists.RemoveItem(ctx, chi.URLParam(r, "list"), chi.URLParam(r, "item"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mutationResponse{List: toListResponse(res.List), Entry: toEntryResponse(res.Entry)})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.lists.History(r.Context(), chi.URLParam(r, "list"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toEntriesResponse(entries))
}

func (h *Handler) handleHistorySince(w http.ResponseWriter, r *http.Request) {
	since := int64(0)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "since must be a non-negative integer"))
			return
		}
		since = parsed
	}

	entries, err := h.lists.HistorySince(r.Context(), since)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toEntriesResponse(entries))
}

// decode parses a required JSON body.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

// decodeOptional parses a JSON body when present; an empty body is fine
// (deletes may omit the location payload entirely).
func (h *Handler) decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
	return false
}

// withLocation validates the reported position and threads it into context
// for the service to record.
func (h *Handler) withLocation(w http.ResponseWriter, r *http.Request, geo geoRequest) (context.Context, bool) {
	loc, err := geo.location()
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return requestcontext.WithLocation(r.Context(), loc), true
}
