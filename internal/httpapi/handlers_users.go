package httpapi

import (
	"net/http"
	"time"

	"campusboard/internal/domain"
	"campusboard/internal/service"
)

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Course    string    `json:"course"`
	Semester  string    `json:"semester"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Course:    u.Course,
		Semester:  u.Semester,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func writeUser(w http.ResponseWriter, status int, u domain.User) {
	WriteJSON(w, status, toUserResponse(u))
}

func (a *api) handleUsersList(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r.URL.Query())

	users, err := a.usersSvc.List(r.Context(), params)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	WriteJSON(w, http.StatusOK, applyFieldSelection(out, params.Fields))
}

func (a *api) handleUsersGet(w http.ResponseWriter, r *http.Request) {
	u, err := a.usersSvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeUser(w, http.StatusOK, u)
}

type createUserRequest struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Role            string `json:"role"`
	Course          string `json:"course"`
	Semester        string `json:"semester"`
}

func (a *api) handleUsersCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	u, err := a.usersSvc.Create(r.Context(), service.CreateUserParams{
		Email:           req.Email,
		Name:            req.Name,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Role:            domain.Role(req.Role),
		Course:          req.Course,
		Semester:        req.Semester,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	writeUser(w, http.StatusCreated, u)
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Course   *string `json:"course"`
	Semester *string `json:"semester"`
}

func (a *api) handleUsersUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	upd := domain.UserUpdate{
		Email:    req.Email,
		Name:     req.Name,
		Course:   req.Course,
		Semester: req.Semester,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		upd.Role = &role
	}

	u, err := a.usersSvc.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeUser(w, http.StatusOK, u)
}

func (a *api) handleUsersDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.usersSvc.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleUsersReactivate(w http.ResponseWriter, r *http.Request) {
	if err := a.usersSvc.Reactivate(r.Context(), r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleUsersMe(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthenticated)
		return
	}
	writeUser(w, http.StatusOK, u)
}

type updateMeRequest struct {
	Email           *string `json:"email"`
	Name            *string `json:"name"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"password_confirm"`
}

func (a *api) handleUsersMeUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthenticated)
		return
	}

	var req updateMeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if req.Password != nil || req.PasswordConfirm != nil {
		WriteDomainError(w, domain.NewValidationError(map[string]string{
			"password": "cannot be changed here, use PATCH /v1/auth/updatepassword",
		}))
		return
	}

	updated, err := a.usersSvc.UpdateProfile(r.Context(), u.ID, domain.ProfileUpdate{
		Email: req.Email,
		Name:  req.Name,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeUser(w, http.StatusOK, updated)
}

func (a *api) handleUsersMeDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthenticated)
		return
	}

	if err := a.usersSvc.Deactivate(r.Context(), u.ID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
