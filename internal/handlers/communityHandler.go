package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/akolanti/CommunityRAG/internal/adapter/utils"
	"github.com/akolanti/CommunityRAG/internal/api"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
)

// ListCommunitiesHandler godoc
// @Summary      List every community
// @Description  Includes inactive communities and the statutes partition.
// @Tags         Communities
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   communityModel.Community
// @Router       /admin/communities [get]
func ListCommunitiesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	all, err := ragService().ListCommunities(r.Context())
	if err != nil {
		writeServiceError(w, r, "", err)
		return
	}
	if all == nil {
		all = []communityModel.Community{}
	}
	writeJsonResponse(w, http.StatusOK, all)
}

// CreateCommunityHandler godoc
// @Summary      Create a community
// @Tags         Communities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.CreateCommunityRequest  true  "New community"
// @Success      201      {object}  communityModel.Community
// @Failure      400      {object}  api.JobResponse  "Blank or duplicate name"
// @Router       /admin/communities [post]
func CreateCommunityHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var req api.CreateCommunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}
	created, err := ragService().CreateCommunity(r.Context(), communityModel.NewCommunity{
		Name:        req.Name,
		City:        req.City,
		PortalURL:   req.PortalURL,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, req.Name, err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, created)
}

// UpdateCommunityHandler godoc
// @Summary      Rename or (de)activate a community
// @Description  The id and slug never change. Renaming the statutes partition is rejected.
// @Tags         Communities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                         true  "Community ID"
// @Param        request  body      api.UpdateCommunityRequest  true  "Fields to change"
// @Success      200      {object}  communityModel.Community
// @Failure      400      {object}  api.JobResponse
// @Failure      404      {object}  api.JobResponse
// @Router       /admin/communities/{id} [patch]
func UpdateCommunityHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id, ok := pathCommunityID(w, r)
	if !ok {
		return
	}
	var req api.UpdateCommunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (req.Name == nil && req.IsActive == nil) {
		WriteErrorResponse(w, http.StatusBadRequest, strconv.FormatInt(id, 10), "name or is_active is required")
		return
	}

	var (
		updated communityModel.Community
		err     error
	)
	if req.Name != nil {
		if updated, err = ragService().RenameCommunity(r.Context(), id, *req.Name); err != nil {
			writeServiceError(w, r, strconv.FormatInt(id, 10), err)
			return
		}
	}
	if req.IsActive != nil {
		if updated, err = ragService().SetCommunityActive(r.Context(), id, *req.IsActive); err != nil {
			writeServiceError(w, r, strconv.FormatInt(id, 10), err)
			return
		}
	}
	writeJsonResponse(w, http.StatusOK, updated)
}

// DeleteCommunityHandler godoc
// @Summary      Delete a community and its documents
// @Tags         Communities
// @Security     BearerAuth
// @Param        id   path  int  true  "Community ID"
// @Success      204
// @Failure      400  {object}  api.JobResponse  "The statutes partition cannot be deleted"
// @Failure      404  {object}  api.JobResponse
// @Router       /admin/communities/{id} [delete]
func DeleteCommunityHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id, ok := pathCommunityID(w, r)
	if !ok {
		return
	}
	if err := ragService().DeleteCommunity(r.Context(), id); err != nil {
		writeServiceError(w, r, strconv.FormatInt(id, 10), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathCommunityID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := utils.GetChiURLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteErrorResponse(w, http.StatusBadRequest, raw, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func requireCommunity(r *http.Request, id int64) error {
	all, err := ragService().ListCommunities(r.Context())
	if err != nil {
		return err
	}
	for _, c := range all {
		if c.ID == id {
			return nil
		}
	}
	return fmt.Errorf("%w: community %d does not exist", commonModels.ErrValidation, id)
}
