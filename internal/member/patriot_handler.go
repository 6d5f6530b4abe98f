package member

import (
	"net/http"

	"github.com/darregistry/member-registry/go-api-server/internal/shared/handler"
	"github.com/gin-gonic/gin"
)

type PatriotHandler struct {
	patriotService *PatriotService
}

func NewPatriotHandler(patriotService *PatriotService) *PatriotHandler {
	return &PatriotHandler{
		patriotService: patriotService,
	}
}

// AssignOrCreatePatriot reuses a matching patriot or creates one
func (h *PatriotHandler) AssignOrCreatePatriot(c *gin.Context) {
	memberID, ok := handler.PathID(c, "memberId")
	if !ok {
		return
	}

	var request PatriotRequest
	if !handler.BindJSON(c, &request) {
		return
	}

	response, err := h.patriotService.AssignOrCreatePatriot(c.Request.Context(), memberID, &request)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	status := http.StatusOK
	if response.Message == MessagePatriotCreated {
		status = http.StatusCreated
	}
	c.JSON(status, response)
}

// CreateAndAssignPatriot rejects a payload that matches an existing patriot
func (h *PatriotHandler) CreateAndAssignPatriot(c *gin.Context) {
	memberID, ok := handler.PathID(c, "memberId")
	if !ok {
		return
	}

	var request PatriotRequest
	if !handler.BindJSON(c, &request) {
		return
	}

	response, err := h.patriotService.CreateAndAssignPatriot(c.Request.Context(), memberID, &request)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *PatriotHandler) AssignPatriotToMember(c *gin.Context) {
	memberID, ok := handler.PathID(c, "memberId")
	if !ok {
		return
	}
	patriotID, ok := handler.PathID(c, "patriotId")
	if !ok {
		return
	}

	response, err := h.patriotService.AssignPatriotToMember(c.Request.Context(), memberID, patriotID)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PatriotHandler) GetPatriotsForMember(c *gin.Context) {
	memberID, ok := handler.PathID(c, "memberId")
	if !ok {
		return
	}

	response, err := h.patriotService.GetPatriotsForMember(c.Request.Context(), memberID)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PatriotHandler) GetPatriotByID(c *gin.Context) {
	memberID, ok := handler.PathID(c, "memberId")
	if !ok {
		return
	}
	patriotID, ok := handler.PathID(c, "patriotId")
	if !ok {
		return
	}

	response, err := h.patriotService.GetPatriotByID(c.Request.Context(), memberID, patriotID)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PatriotHandler) UpdatePatriot(c *gin.Context) {
	memberID, ok := handler.PathID(c, "memberId")
	if !ok {
		return
	}
	patriotID, ok := handler.PathID(c, "patriotId")
	if !ok {
		return
	}

	var request PatriotRequest
	if !handler.BindJSON(c, &request) {
		return
	}

	response, err := h.patriotService.UpdatePatriot(c.Request.Context(), memberID, patriotID, &request)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PatriotHandler) UnassignOrDeletePatriot(c *gin.Context) {
	memberID, ok := handler.PathID(c, "memberId")
	if !ok {
		return
	}
	patriotID, ok := handler.PathID(c, "patriotId")
	if !ok {
		return
	}

	response, err := h.patriotService.UnassignOrDeletePatriot(c.Request.Context(), memberID, patriotID)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PatriotHandler) CreateUnassignedPatriot(c *gin.Context) {
	var request PatriotRequest
	if !handler.BindJSON(c, &request) {
		return
	}

	response, err := h.patriotService.CreateUnassignedPatriot(c.Request.Context(), &request)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *PatriotHandler) GetAllPatriots(c *gin.Context) {
	response, err := h.patriotService.GetAllPatriots(c.Request.Context())
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PatriotHandler) GetUnassignedPatriots(c *gin.Context) {
	response, err := h.patriotService.GetUnassignedPatriots(c.Request.Context())
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PatriotHandler) UpdateUnassignedPatriot(c *gin.Context) {
	patriotID, ok := handler.PathID(c, "patriotId")
	if !ok {
		return
	}

	var request PatriotRequest
	if !handler.BindJSON(c, &request) {
		return
	}

	response, err := h.patriotService.UpdateUnassignedPatriot(c.Request.Context(), patriotID, &request)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PatriotHandler) DeleteUnassignedPatriot(c *gin.Context) {
	patriotID, ok := handler.PathID(c, "patriotId")
	if !ok {
		return
	}

	response, err := h.patriotService.DeleteUnassignedPatriot(c.Request.Context(), patriotID)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PatriotHandler) DeleteAllPatriots(c *gin.Context) {
	handler.RespondServiceError(c, h.patriotService.DeleteAllPatriots(c.Request.Context()))
}
