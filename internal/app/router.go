package app

import (
	"quiz_backend/docs"
	"quiz_backend/internal/middleware"
	"quiz_backend/internal/model"
	"quiz_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	a.registerUserRoutes(router, c)
	a.registerQuizRoutes(router, c)
}

func (a *App) registerUserRoutes(router *gin.Engine, c *controllers) {
	auth := middleware.AuthMiddleware(a.Config)

	user := router.Group("/user")
	{
		user.POST("/register", c.auth.Register)
		user.POST("/login", c.auth.Login)
		user.POST("/refresh-token", c.auth.RefreshToken)

		user.POST("/logout", auth, c.auth.Logout)
		user.POST("/change-password", auth, c.auth.ChangePassword)
		user.GET("/current-user", auth, c.auth.CurrentUser)
	}
}

func (a *App) registerQuizRoutes(router *gin.Engine, c *controllers) {
	auth := middleware.AuthMiddleware(a.Config)
	admin := middleware.RoleMiddleware(model.RoleAdmin)

	quiz := router.Group("/quiz")
	{
		// 公共接口
		quiz.GET("/", c.quiz.ListQuizzes)
		quiz.GET("/:quizId", c.question.ListQuestions)
		quiz.GET("/:quizId/details", c.quiz.GetQuiz)

		// 登录用户答题
		quiz.POST("/:quizId/submit", auth, c.quiz.SubmitQuiz)
		quiz.GET("/:quizId/attempt", auth, c.quiz.GetMyAttempt)

		// 管理员接口
		quiz.POST("/create", auth, admin, c.quiz.CreateQuiz)
		quiz.POST("/:quizId/questions/add", auth, admin, c.question.AddQuestions)
		quiz.DELETE("/:quizId/delete", auth, admin, c.quiz.DeleteQuiz)
		quiz.GET("/:quizId/attempts", auth, admin, c.quiz.ListAttempts)
	}
}
