// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package swap

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	requestutil "github.com/taibuivan/tomeswap/internal/platform/request"
	"github.com/taibuivan/tomeswap/internal/platform/respond"
	"github.com/taibuivan/tomeswap/pkg/pagination"
	"github.com/taibuivan/tomeswap/pkg/slice"
)

// # Handler Implementation

// Handler implements the HTTP layer for the swap lifecycle.
//
// Every route requires authentication; the acting participant is always
// the token subject, never a body field.
type Handler struct {
	service *Service
}

// NewHandler constructs a new swap [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with swap endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.createSwap)
	router.Get("/", handler.listSwaps)

	router.Route("/{id}", func(subRouter chi.Router) {
		subRouter.Get("/", handler.getSwap)
		subRouter.Get("/timeline", handler.getTimeline)

		// ## Negotiation
		subRouter.Post("/accept", handler.acceptSwap)
		subRouter.Post("/deny", handler.denySwap)
		subRouter.Patch("/progress", handler.updateProgress)
		subRouter.Post("/finish", handler.requestFinish)

		// ## Meetups
		subRouter.Route("/meetups", func(meetups chi.Router) {
			meetups.Post("/", handler.addMeetup)
			meetups.Patch("/{meetupID}", handler.updateMeetup)
			meetups.Delete("/{meetupID}", handler.removeMeetup)
		})

		// ## Disputes & Feedback
		subRouter.Post("/issues", handler.addIssue)
		subRouter.Delete("/issues/{issueID}", handler.removeIssue)
		subRouter.Post("/feedback", handler.addFeedback)
	})

	return router
}

// # Negotiation Endpoints

/*
POST /api/v1/swaps.

Description: Opens a swap offering one of the caller's copies to another
member.

Request (Body):
  - { "accepting_user_id": "uuid", "book_id": "uuid" }

Response:
  - 201: Swap: Created aggregate with opening history
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Authentication required
  - 404: 404: ErrNotFound: Offered copy not found
*/
func (handler *Handler) createSwap(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		AcceptingUserID string `json:"accepting_user_id"`
		BookID          string `json:"book_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	aggregate, err := handler.service.CreateSwap(request.Context(), userID, input.AcceptingUserID, input.BookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, aggregate)
}

// swapSummary is the compact list representation; the full aggregate is
// only returned from the detail endpoint.
type swapSummary struct {
	ID               string    `json:"id"`
	Status           Status    `json:"status"`
	RequestingUserID string    `json:"requesting_user_id"`
	AcceptingUserID  string    `json:"accepting_user_id"`
	CreatedAt        time.Time `json:"created_at"`
}

/*
GET /api/v1/swaps.

Description: Lists the caller's swaps, newest first.

Request:
  - limit: int
  - page: int

Response:
  - 200: []Swap: Paginated list
  - 401: 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) listSwaps(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)

	swaps, total, err := handler.service.ListSwaps(request.Context(), userID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summaries := slice.Map(swaps, func(aggregate *Swap) swapSummary {
		return swapSummary{
			ID:               aggregate.ID,
			Status:           aggregate.Status,
			RequestingUserID: aggregate.Requesting.UserID,
			AcceptingUserID:  aggregate.Accepting.UserID,
			CreatedAt:        aggregate.CreatedAt,
		}
	})

	respond.Paginated(writer, summaries, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/swaps/{id}.

Description: Returns the fully hydrated aggregate for a participant.

Response:
  - 200: Swap: Success
  - 403: 403: ErrForbidden: Caller is not a participant
  - 404: 404: ErrNotFound: Swap not found
*/
func (handler *Handler) getSwap(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	aggregate, err := handler.service.GetSwap(request.Context(), requestutil.ID(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, aggregate)
}

/*
GET /api/v1/swaps/{id}/timeline.

Description: Returns the append-only negotiation history.

Response:
  - 200: []TimelineUpdate: History in insertion order
  - 403: 403: ErrForbidden: Caller is not a participant
  - 404: 404: ErrNotFound: Swap not found
*/
func (handler *Handler) getTimeline(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.service.GetTimeline(request.Context(), requestutil.ID(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

/*
POST /api/v1/swaps/{id}/accept.

Description: The accepting member commits one of their copies, activating
the swap.

Request (Body):
  - { "book_id": "uuid" }

Response:
  - 200: Swap: Updated aggregate
  - 403: 403: ErrForbidden: Caller is not the accepting member
  - 409: 409: ErrConflict: Side already has a committed book
*/
func (handler *Handler) acceptSwap(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		BookID string `json:"book_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	aggregate, err := handler.service.AcceptSwap(request.Context(), requestutil.ID(request, "id"), userID, input.BookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, aggregate)
}

/*
POST /api/v1/swaps/{id}/deny.

Description: The accepting member turns the offer down. The aggregate is
untouched; the outcome lives in the history.

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Caller is not the accepting member
  - 404: 404: ErrNotFound: Swap not found
*/
func (handler *Handler) denySwap(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DenySwap(request.Context(), requestutil.ID(request, "id"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Progress Endpoints

/*
PATCH /api/v1/swaps/{id}/progress.

Description: Records the caller's reading position, bounded by the
committed book's page count.

Request (Body):
  - { "page_at": int }

Response:
  - 200: Swap: Updated aggregate
  - 400: 400: Validation: Page out of bounds
  - 404: 404: ErrNotFound: Caller is not a participant
*/
func (handler *Handler) updateProgress(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		PageAt int `json:"page_at"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	aggregate, err := handler.service.UpdatePageReading(request.Context(), requestutil.ID(request, "id"), userID, input.PageAt)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, aggregate)
}

/*
POST /api/v1/swaps/{id}/finish.

Description: Records the caller asking to wrap up while the counterpart
is still reading.

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Caller is not a participant
*/
func (handler *Handler) requestFinish(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RequestFinish(request.Context(), requestutil.ID(request, "id"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Meetup Endpoints

/*
POST /api/v1/swaps/{id}/meetups.

Description: Proposes a handover location. Rejected while the previous
meetup is unfinished or once ten meetups exist.

Request (Body):
  - { "latitude": float, "longitude": float }

Response:
  - 201: Meetup: New proposal
  - 409: 409: ErrConflict: Sequential rule or cap violated
*/
func (handler *Handler) addMeetup(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	meetup, err := handler.service.AddMeetup(request.Context(), requestutil.ID(request, "id"), userID, input.Latitude, input.Longitude)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, meetup)
}

/*
PATCH /api/v1/swaps/{id}/meetups/{meetupID}.

Description: Moves the meetup through its negotiation states. Changing
location requires new coordinates that differ from the current pin.

Request (Body):
  - { "status": "confirmed|changed_location|completed|proposed", "latitude": float?, "longitude": float? }

Response:
  - 200: Meetup: Updated meetup
  - 409: 409: ErrConflict: Illegal transition or completed meetup
*/
func (handler *Handler) updateMeetup(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Status    string   `json:"status"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	meetup, err := handler.service.UpdateMeetup(
		request.Context(),
		requestutil.ID(request, "id"),
		requestutil.ID(request, "meetupID"),
		userID,
		MeetupStatus(input.Status),
		input.Latitude,
		input.Longitude,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, meetup)
}

/*
DELETE /api/v1/swaps/{id}/meetups/{meetupID}.

Description: Withdraws a meetup proposal.

Response:
  - 204: No Content: Success
  - 404: 404: ErrNotFound: Meetup not found
*/
func (handler *Handler) removeMeetup(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.RemoveMeetup(request.Context(), requestutil.ID(request, "id"), requestutil.ID(request, "meetupID"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Dispute & Feedback Endpoints

/*
POST /api/v1/swaps/{id}/issues.

Description: Opens a dispute on the caller's side and marks the swap
disputed.

Request (Body):
  - { "description": "string (1..1000)" }

Response:
  - 201: Issue: New dispute
  - 409: 409: ErrConflict: An issue is already open on this side
*/
func (handler *Handler) addIssue(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Description string `json:"description"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	issue, err := handler.service.AddIssue(request.Context(), requestutil.ID(request, "id"), userID, input.Description)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, issue)
}

/*
DELETE /api/v1/swaps/{id}/issues/{issueID}.

Description: Resolves the caller's open dispute. The resolution text is
recorded in the history before the issue record is deleted.

Request (Body):
  - { "resolution": "string" }

Response:
  - 204: No Content: Success
  - 404: 404: ErrNotFound: No such open issue on the caller's side
*/
func (handler *Handler) removeIssue(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Resolution string `json:"resolution"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.RemoveIssue(request.Context(), requestutil.ID(request, "id"), userID, requestutil.ID(request, "issueID"), input.Resolution)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/swaps/{id}/feedback.

Description: Rates the exchange from the caller's side. The swap
completes once both sides have left feedback.

Request (Body):
  - { "stars": int, "recommend": bool, "length": enum, "condition": enum, "communication": enum }

Response:
  - 201: Feedback: Recorded rating
  - 400: 400: Validation: Stars or enums out of range
  - 409: 409: ErrConflict: Feedback already left on this side
*/
func (handler *Handler) addFeedback(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Stars         int    `json:"stars"`
		Recommend     bool   `json:"recommend"`
		Length        string `json:"length"`
		Condition     string `json:"condition"`
		Communication string `json:"communication"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	feedback, err := handler.service.AddFeedback(
		request.Context(),
		requestutil.ID(request, "id"),
		userID,
		input.Stars,
		input.Recommend,
		LengthOpinion(input.Length),
		ConditionOpinion(input.Condition),
		CommunicationOpinion(input.Communication),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, feedback)
}
