package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"study-service/internal/metrics"
)

type Handlers struct {
	Sessions  *SessionHandler
	Analytics *AnalyticsHandler
	Goals     *GoalHandler
	Catalog   *CatalogHandler
	Questions *QuestionHandler
	Datasets  *DatasetHandler
}

// RegisterRoutes mounts the API. Catalog reads are public; everything that
// touches user data or changes the catalog requires X-User-ID.
func RegisterRoutes(r *gin.Engine, h *Handlers, serviceName string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	public := r.Group("/")
	{
		public.GET("/providers", h.Catalog.ListProviders)
		public.GET("/providers/:id", h.Catalog.GetProvider)
		public.GET("/exams", h.Catalog.ListExams)
		public.GET("/exams/:id", h.Catalog.GetExam)
		public.GET("/exams/:id/pool", h.Sessions.GetPoolInfo)
		public.GET("/topics", h.Catalog.ListTopics)
		public.GET("/topics/:id", h.Catalog.GetTopic)
		public.GET("/questions", h.Questions.ListQuestions)
		public.GET("/questions/:id", h.Questions.GetQuestion)
	}

	protected := r.Group("/")
	protected.Use(RequireUser())
	{
		protected.POST("/providers", h.Catalog.CreateProvider)
		protected.POST("/exams", h.Catalog.CreateExam)
		protected.POST("/topics", h.Catalog.CreateTopic)
		protected.POST("/questions", h.Questions.CreateQuestion)
		protected.PUT("/questions/:id", h.Questions.UpdateQuestion)
		protected.DELETE("/questions/:id", h.Questions.DeleteQuestion)
		protected.POST("/datasets/import", h.Datasets.ImportDataset)
	}

	sessions := protected.Group("/sessions")
	{
		sessions.POST("", h.Sessions.CreateSession)
		sessions.GET("", h.Sessions.ListSessions)
		sessions.GET("/:id", h.Sessions.GetSession)
		sessions.DELETE("/:id", h.Sessions.DeleteSession)
		sessions.POST("/:id/answers", h.Sessions.SubmitAnswer)
		sessions.POST("/:id/complete", h.Sessions.CompleteSession)
		sessions.POST("/:id/pause", h.Sessions.PauseSession)
		sessions.POST("/:id/resume", h.Sessions.ResumeSession)
		sessions.POST("/:id/abandon", h.Sessions.AbandonSession)
		sessions.PUT("/:id/navigate", h.Sessions.Navigate)
		sessions.GET("/:id/progress", h.Sessions.GetProgress)
		sessions.GET("/:id/results", h.Sessions.GetResults)
		sessions.GET("/:id/analytics", h.Sessions.GetSessionAnalytics)
		sessions.POST("/:id/report", h.Sessions.ExportReport)
	}

	analytics := protected.Group("/analytics")
	{
		analytics.GET("/overview", h.Analytics.GetOverview)
		analytics.GET("/trends", h.Analytics.GetTrends)
		analytics.GET("/competencies/topics", h.Analytics.GetTopicCompetencies)
		analytics.GET("/competencies/providers", h.Analytics.GetProviderCompetencies)
		analytics.GET("/insights", h.Analytics.GetInsights)
	}

	goals := protected.Group("/goals")
	{
		goals.POST("", h.Goals.CreateGoal)
		goals.GET("", h.Goals.ListGoals)
		goals.GET("/:id", h.Goals.GetGoal)
		goals.GET("/:id/progress", h.Goals.GetProgress)
		goals.PUT("/:id/status", h.Goals.UpdateStatus)
		goals.DELETE("/:id", h.Goals.DeleteGoal)
	}
}
