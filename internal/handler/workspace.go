package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
	"github.com/chatter-dev/chatter/internal/utils"
)

type createWorkspaceRequest struct {
	Name string `validate:"required" json:"name"`
}

type updateWorkspaceRequest struct {
	Name string `validate:"required" json:"name"`
}

type joinWorkspaceRequest struct {
	JoinCode string `validate:"required" json:"joinCode"`
}

func (h *Handler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	var body createWorkspaceRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	workspace, err := h.workspace.Create(r.Context(), body.Name, user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, workspace)
}

func (h *Handler) GetWorkspaces(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	workspaces, err := h.workspace.List(r.Context(), user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if workspaces == nil {
		workspaces = []domain.Workspace{}
	}
	writeJSON(w, workspaces)
}

// GetWorkspace hides non-membership behind 404 so outsiders can't probe
// which workspaces exist.
func (h *Handler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workspace, err := h.workspace.Get(r.Context(), workspaceId, user.Id)
	if err != nil {
		if stderrors.Is(err, internal_errors.NotAuthorized) {
			err = internal_errors.NotFound
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, workspace)
}

// GetWorkspaceInfo is readable before joining: name and membership flag only.
func (h *Handler) GetWorkspaceInfo(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, err := h.workspace.Info(r.Context(), workspaceId, user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, info)
}

func (h *Handler) UpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body updateWorkspaceRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.workspace.Update(r.Context(), workspaceId, user.Id, body.Name); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.workspace.Remove(r.Context(), workspaceId, user.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) JoinWorkspace(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body joinWorkspaceRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	member, err := h.workspace.Join(r.Context(), workspaceId, user.Id, body.JoinCode)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, member)
}

// NewJoinCode rotates the invite code. Admin only.
func (h *Handler) NewJoinCode(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	code, err := h.workspace.NewJoinCode(r.Context(), workspaceId, user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, map[string]string{"joinCode": code})
}

// GetMembers degrades to an empty list for non-members.
func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	members, err := h.workspace.Members(r.Context(), workspaceId, user.Id)
	if err != nil && !stderrors.Is(err, internal_errors.NotAuthorized) {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if members == nil {
		members = []domain.Member{}
	}
	writeJSON(w, members)
}

func (h *Handler) GetCurrentMember(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	member, err := h.workspace.CurrentMember(r.Context(), workspaceId, user.Id)
	if err != nil {
		if stderrors.Is(err, internal_errors.NotAuthorized) {
			err = internal_errors.NotFound
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, member)
}

func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	memberId, err := pathId(r, "member")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	member, err := h.workspace.MemberById(r.Context(), workspaceId, user.Id, memberId)
	if err != nil {
		if stderrors.Is(err, internal_errors.NotAuthorized) {
			err = internal_errors.NotFound
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, member)
}
