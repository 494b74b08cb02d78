package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/zeedivx/web-starter/internal/apperr"
	"github.com/zeedivx/web-starter/internal/service"
)

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.checkValid(req); err != nil {
		a.writeError(w, r, err)
		return
	}

	// New accounts are active unless the request says otherwise.
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	isSuperuser := req.IsSuperuser != nil && *req.IsSuperuser

	user, err := a.users.Create(r.Context(), service.CreateUserInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		IsActive:    isActive,
		IsSuperuser: isSuperuser,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, r, http.StatusCreated, newUserResponse(user))
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	user, err := a.users.Get(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, r, http.StatusOK, newUserResponse(user))
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.checkValid(req); err != nil {
		a.writeError(w, r, err)
		return
	}

	user, err := a.users.Update(r.Context(), id, service.UpdateUserInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, r, http.StatusOK, newUserResponse(user))
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := a.users.Delete(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	pageNum, pageSize, err := pageParams(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	page, err := a.users.List(r.Context(), pageNum, pageSize)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, r, http.StatusOK, newPaginatedUsers(page, pageNum, pageSize))
}

func userID(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.BadRequest("Invalid user id")
	}
	return id, nil
}
