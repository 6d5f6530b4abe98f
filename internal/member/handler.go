package member

import (
	"net/http"

	"github.com/darregistry/member-registry/go-api-server/internal/shared/handler"
	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	memberService *MemberService
}

func NewMemberHandler(memberService *MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

func (h *MemberHandler) CreateMember(c *gin.Context) {
	var request MemberRequest

	// Parse and validate JSON request
	if !handler.BindJSON(c, &request) {
		return
	}

	status := http.StatusCreated
	if request.ID != nil {
		status = http.StatusOK
	}

	response, err := h.memberService.CreateOrUpdateMember(c.Request.Context(), &request)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(status, response)
}

func (h *MemberHandler) UpdateMember(c *gin.Context) {
	memberID, ok := handler.PathID(c, "memberId")
	if !ok {
		return
	}

	var request MemberRequest
	if !handler.BindJSON(c, &request) {
		return
	}
	// The path wins over any id in the body
	request.ID = &memberID

	response, err := h.memberService.CreateOrUpdateMember(c.Request.Context(), &request)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *MemberHandler) GetMember(c *gin.Context) {
	memberID, ok := handler.PathID(c, "memberId")
	if !ok {
		return
	}

	response, err := h.memberService.RetrieveMember(c.Request.Context(), memberID)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *MemberHandler) GetAllMembers(c *gin.Context) {
	response, err := h.memberService.RetrieveAllMembers(c.Request.Context())
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *MemberHandler) DeleteMember(c *gin.Context) {
	memberID, ok := handler.PathID(c, "memberId")
	if !ok {
		return
	}

	response, err := h.memberService.DeleteMember(c.Request.Context(), memberID)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
