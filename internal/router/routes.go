package router

import (
	"github.com/darregistry/member-registry/go-api-server/internal/config"
	"github.com/darregistry/member-registry/go-api-server/internal/member"
	"github.com/darregistry/member-registry/go-api-server/internal/meta"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/database"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/metrics"
	"github.com/gin-gonic/gin"
)

// Setup configures all application-specific routes using dependency injection.
// recorder may be nil when metrics are disabled.
func Setup(router *gin.Engine, cfg *config.Config, db *database.DB, recorder *metrics.Recorder) {
	// Meta handler (health check, metrics)
	metaHandler := meta.NewHandler(cfg, db)
	router.GET("/health", metaHandler.Health)
	if recorder != nil {
		router.GET("/metrics", gin.WrapH(recorder.Handler()))
	}

	// repository
	memberRepository := member.NewMemberRepository()
	patriotRepository := member.NewPatriotRepository()
	chapterRepository := member.NewChapterRepository()

	// service
	memberService := member.NewMemberService(db.DB, memberRepository, patriotRepository, chapterRepository, recorder)
	patriotService := member.NewPatriotService(db.DB, memberRepository, patriotRepository, recorder)
	chapterService := member.NewChapterService(db.DB, memberRepository, chapterRepository, recorder)

	// handler
	memberHandler := member.NewMemberHandler(memberService)
	patriotHandler := member.NewPatriotHandler(patriotService)
	chapterHandler := member.NewChapterHandler(chapterService)

	// API v1 routes
	memberV1 := router.Group("/api/v1/members")
	{
		memberV1.POST("", memberHandler.CreateMember)
		memberV1.GET("", memberHandler.GetAllMembers)
		memberV1.GET("/:memberId", memberHandler.GetMember)
		memberV1.PUT("/:memberId", memberHandler.UpdateMember)
		memberV1.DELETE("/:memberId", memberHandler.DeleteMember)

		memberV1.POST("/:memberId/patriots", patriotHandler.AssignOrCreatePatriot)
		memberV1.POST("/:memberId/patriots/strict", patriotHandler.CreateAndAssignPatriot)
		memberV1.GET("/:memberId/patriots", patriotHandler.GetPatriotsForMember)
		memberV1.GET("/:memberId/patriots/:patriotId", patriotHandler.GetPatriotByID)
		memberV1.POST("/:memberId/patriots/:patriotId", patriotHandler.AssignPatriotToMember)
		memberV1.PUT("/:memberId/patriots/:patriotId", patriotHandler.UpdatePatriot)
		memberV1.DELETE("/:memberId/patriots/:patriotId", patriotHandler.UnassignOrDeletePatriot)

		memberV1.POST("/:memberId/chapter", chapterHandler.AssignOrCreateChapter)
		memberV1.GET("/:memberId/chapter", chapterHandler.GetChapterForMember)
		memberV1.GET("/:memberId/chapter/:chapterId", chapterHandler.GetChapterByID)
		memberV1.POST("/:memberId/chapter/:chapterId", chapterHandler.ReassignChapterToMember)
		memberV1.PUT("/:memberId/chapter/:chapterId", chapterHandler.UpdateChapter)
		memberV1.DELETE("/:memberId/chapter/:chapterId", chapterHandler.DeleteChapterScopedToMember)
	}

	patriotV1 := router.Group("/api/v1/patriots")
	{
		patriotV1.POST("", patriotHandler.CreateUnassignedPatriot)
		patriotV1.GET("", patriotHandler.GetAllPatriots)
		patriotV1.DELETE("", patriotHandler.DeleteAllPatriots)
		patriotV1.GET("/unassigned", patriotHandler.GetUnassignedPatriots)
		patriotV1.PUT("/:patriotId", patriotHandler.UpdateUnassignedPatriot)
		patriotV1.DELETE("/:patriotId", patriotHandler.DeleteUnassignedPatriot)
	}

	chapterV1 := router.Group("/api/v1/chapters")
	{
		chapterV1.GET("", chapterHandler.GetAllChapters)
		chapterV1.DELETE("", chapterHandler.DeleteAllChapters)
		chapterV1.GET("/unassigned", chapterHandler.GetUnassignedChapters)
		chapterV1.PUT("/:chapterId", chapterHandler.UpdateUnassignedChapter)
		chapterV1.DELETE("/:chapterId", chapterHandler.DeleteChapter)
	}
}
