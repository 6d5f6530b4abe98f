package member

import (
	"net/http"

	"github.com/darregistry/member-registry/go-api-server/internal/shared/handler"
	"github.com/gin-gonic/gin"
)

type ChapterHandler struct {
	chapterService *ChapterService
}

func NewChapterHandler(chapterService *ChapterService) *ChapterHandler {
	return &ChapterHandler{
		chapterService: chapterService,
	}
}

func (h *ChapterHandler) AssignOrCreateChapter(c *gin.Context) {
	memberID, ok := handler.PathID(c, "memberId")
	if !ok {
		return
	}

	var request ChapterRequest
	if !handler.BindJSON(c, &request) {
		return
	}

	response, err := h.chapterService.AssignOrCreateChapter(c.Request.Context(), memberID, &request)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	status := http.StatusOK
	if response.Message == MessageChapterCreated {
		status = http.StatusCreated
	}
	c.JSON(status, response)
}

func (h *ChapterHandler) GetChapterForMember(c *gin.Context) {
	memberID, ok := handler.PathID(c, "memberId")
	if !ok {
		return
	}

	response, err := h.chapterService.GetChapterForMember(c.Request.Context(), memberID)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ChapterHandler) GetChapterByID(c *gin.Context) {
	memberID, chapterID, ok := memberChapterIDs(c)
	if !ok {
		return
	}

	response, err := h.chapterService.GetChapterByID(c.Request.Context(), memberID, chapterID)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ChapterHandler) ReassignChapterToMember(c *gin.Context) {
	memberID, chapterID, ok := memberChapterIDs(c)
	if !ok {
		return
	}

	response, err := h.chapterService.ReassignChapterToMember(c.Request.Context(), memberID, chapterID)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ChapterHandler) UpdateChapter(c *gin.Context) {
	memberID, chapterID, ok := memberChapterIDs(c)
	if !ok {
		return
	}

	var request ChapterRequest
	if !handler.BindJSON(c, &request) {
		return
	}

	response, err := h.chapterService.UpdateChapter(c.Request.Context(), memberID, chapterID, &request)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ChapterHandler) DeleteChapterScopedToMember(c *gin.Context) {
	memberID, chapterID, ok := memberChapterIDs(c)
	if !ok {
		return
	}

	response, err := h.chapterService.DeleteChapterScopedToMember(c.Request.Context(), memberID, chapterID)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ChapterHandler) GetAllChapters(c *gin.Context) {
	response, err := h.chapterService.GetAllChapters(c.Request.Context())
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ChapterHandler) GetUnassignedChapters(c *gin.Context) {
	response, err := h.chapterService.GetUnassignedChapters(c.Request.Context())
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ChapterHandler) UpdateUnassignedChapter(c *gin.Context) {
	chapterID, ok := handler.PathID(c, "chapterId")
	if !ok {
		return
	}

	var request ChapterRequest
	if !handler.BindJSON(c, &request) {
		return
	}

	response, err := h.chapterService.UpdateUnassignedChapter(c.Request.Context(), chapterID, &request)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DeleteChapter is the admin path; referrers lose their chapter
func (h *ChapterHandler) DeleteChapter(c *gin.Context) {
	chapterID, ok := handler.PathID(c, "chapterId")
	if !ok {
		return
	}

	response, err := h.chapterService.DeleteChapterUnconditionally(c.Request.Context(), chapterID)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ChapterHandler) DeleteAllChapters(c *gin.Context) {
	handler.RespondServiceError(c, h.chapterService.DeleteAllChapters(c.Request.Context()))
}

func memberChapterIDs(c *gin.Context) (uint32, uint32, bool) {
	memberID, ok := handler.PathID(c, "memberId")
	if !ok {
		return 0, 0, false
	}
	chapterID, ok := handler.PathID(c, "chapterId")
	if !ok {
		return 0, 0, false
	}
	return memberID, chapterID, true
}
