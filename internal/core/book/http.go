// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	requestutil "github.com/taibuivan/tomeswap/internal/platform/request"
	"github.com/taibuivan/tomeswap/internal/platform/respond"
	"github.com/taibuivan/tomeswap/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for catalog operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new catalog [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with catalog endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery
	router.Get("/", handler.listBooks)
	router.Get("/{id}", handler.getBook)

	// ## Owner Management (Auth Required)
	// Note: Authentication middleware should be wrapped when mounting this router in main.go
	router.Post("/", handler.createBook)
	router.Patch("/{id}", handler.updateBook)
	router.Delete("/{id}", handler.deleteBook)

	return router
}

// # Catalog Endpoints

/*
GET /api/v1/books.

Description: Retrieves a paginated list of listed copies.
Supports searching by title or author and filtering by owner and status.

Request:
  - q: string (Full-text search)
  - owner: string (Owner UUID)
  - status: string (available|swapping)
  - limit: int
  - page: int

Response:
  - 200: []UserBook: Paginated list
*/
func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query:   queryParams.Get("q"),
		OwnerID: queryParams.Get("owner"),
	}

	if status := queryParams.Get("status"); status == string(StatusAvailable) || status == string(StatusSwapping) {
		value := Status(status)
		filter.Status = &value
	}

	books, total, err := handler.service.ListBooks(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/books/{id}.

Description: Retrieves full details of a listed copy.

Request:
  - id: string (UUID)

Response:
  - 200: UserBook: Success
  - 404: 404: ErrNotFound: Copy not found
*/
func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	userBook, err := handler.service.GetBook(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, userBook)
}

/*
POST /api/v1/books.

Description: Lists a new copy for the authenticated member.
Slugs are auto-generated from the title; covers queue thumbnail generation.

Request (Body):
  - UserBook JSON object

Response:
  - 201: UserBook: Created object
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UserBook
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateBook(request.Context(), &input, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

/*
PATCH /api/v1/books/{id}.

Description: Updates mutable copy metadata like title, condition, or cover.

Request:
  - id: string (Target UUID)
  - body: UserBook Partial (JSON)

Response:
  - 200: UserBook: Updated entity
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Not the owner
  - 404: 404: ErrNotFound: Copy not found
*/
func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UserBook
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.ID = requestutil.ID(request, "id")

	if err := handler.service.UpdateBook(request.Context(), &input, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, input)
}

/*
DELETE /api/v1/books/{id}.

Description: Retires a copy from the catalog. Copies committed to an
active swap cannot be deleted.

Request:
  - id: string (Target UUID)

Response:
  - 204: No Content: Success
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Not the owner
  - 404: 404: ErrNotFound: Copy not found
  - 409: 409: ErrConflict: Copy is mid-swap
*/
func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := requestutil.ID(request, "id")

	if err := handler.service.DeleteBook(request.Context(), id, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
