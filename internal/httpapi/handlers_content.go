package httpapi

import (
	"net/http"
	"time"

	"campusboard/internal/domain"
)

type postResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func toPostResponse(p domain.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		Title:     p.Title,
		Body:      p.Body,
		CreatedAt: p.CreatedAt,
	}
}

type postRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type postUpdateRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func (a *api) handlePostsList(w http.ResponseWriter, r *http.Request, kind domain.PostKind) {
	params := parseListParams(r.URL.Query())

	posts, err := a.contentSvc.List(r.Context(), kind, params)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	WriteJSON(w, http.StatusOK, applyFieldSelection(out, params.Fields))
}

func (a *api) handlePostsGet(w http.ResponseWriter, r *http.Request, kind domain.PostKind) {
	p, err := a.contentSvc.Get(r.Context(), kind, r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toPostResponse(p))
}

func (a *api) handlePostsCreate(w http.ResponseWriter, r *http.Request, kind domain.PostKind) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	p, err := a.contentSvc.Create(r.Context(), kind, req.Title, req.Body)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toPostResponse(p))
}

func (a *api) handlePostsUpdate(w http.ResponseWriter, r *http.Request, kind domain.PostKind) {
	var req postUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	p, err := a.contentSvc.Update(r.Context(), kind, r.PathValue("id"), req.Title, req.Body)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toPostResponse(p))
}

func (a *api) handlePostsDelete(w http.ResponseWriter, r *http.Request, kind domain.PostKind) {
	if err := a.contentSvc.Delete(r.Context(), kind, r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleEventsList(w http.ResponseWriter, r *http.Request) {
	a.handlePostsList(w, r, domain.PostKindEvent)
}

func (a *api) handleEventsGet(w http.ResponseWriter, r *http.Request) {
	a.handlePostsGet(w, r, domain.PostKindEvent)
}

func (a *api) handleEventsCreate(w http.ResponseWriter, r *http.Request) {
	a.handlePostsCreate(w, r, domain.PostKindEvent)
}

func (a *api) handleEventsUpdate(w http.ResponseWriter, r *http.Request) {
	a.handlePostsUpdate(w, r, domain.PostKindEvent)
}

func (a *api) handleEventsDelete(w http.ResponseWriter, r *http.Request) {
	a.handlePostsDelete(w, r, domain.PostKindEvent)
}

func (a *api) handleUpdatesList(w http.ResponseWriter, r *http.Request) {
	a.handlePostsList(w, r, domain.PostKindUpdate)
}

func (a *api) handleUpdatesGet(w http.ResponseWriter, r *http.Request) {
	a.handlePostsGet(w, r, domain.PostKindUpdate)
}

func (a *api) handleUpdatesCreate(w http.ResponseWriter, r *http.Request) {
	a.handlePostsCreate(w, r, domain.PostKindUpdate)
}

func (a *api) handleUpdatesUpdate(w http.ResponseWriter, r *http.Request) {
	a.handlePostsUpdate(w, r, domain.PostKindUpdate)
}

func (a *api) handleUpdatesDelete(w http.ResponseWriter, r *http.Request) {
	a.handlePostsDelete(w, r, domain.PostKindUpdate)
}
