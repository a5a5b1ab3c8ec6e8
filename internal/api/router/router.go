package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classtrack/backend/config"
	"classtrack/backend/internal/api/handler"
	"classtrack/backend/internal/api/middleware"
	"classtrack/backend/pkg/jwt"
	"classtrack/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(8 << 20)) // ICS 上传上限 8MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录接口限流防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", middleware.RateLimit(rdb, 30, time.Minute), h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块（管理员）
			users := authorized.Group("/users")
			{
				users.POST("", middleware.RoleAuth("admin"), h.User.CreateUser)
				users.GET("", middleware.RoleAuth("admin", "teacher"), h.User.ListUsers)
				users.GET("/:id", middleware.RoleAuth("admin", "teacher"), h.User.GetUser)
				users.PUT("/:id", middleware.RoleAuth("admin"), h.User.UpdateUser)
				users.DELETE("/:id", middleware.RoleAuth("admin"), h.User.DeleteUser)
				users.PUT("/:id/role", middleware.RoleAuth("admin"), h.User.AssignRole)
				users.POST("/:id/reset-password", middleware.RoleAuth("admin"), h.User.ResetPassword)
			}

			// 班级模块
			classes := authorized.Group("/classes")
			{
				classes.GET("", h.Class.ListClasses)
				classes.GET("/:id", h.Class.GetClass)
				classes.GET("/:id/students", middleware.RoleAuth("admin", "teacher"), h.Class.ListStudents)
				classes.POST("", middleware.RoleAuth("admin"), h.Class.CreateClass)
				classes.PUT("/:id", middleware.RoleAuth("admin"), h.Class.UpdateClass)
				classes.DELETE("/:id", middleware.RoleAuth("admin"), h.Class.DeleteClass)
				classes.PUT("/:id/students", middleware.RoleAuth("admin"), h.Class.AssignStudents)
			}

			// 学期模块
			terms := authorized.Group("/terms")
			{
				terms.GET("", h.Term.ListTerms)
				terms.GET("/active", h.Term.GetActiveTerm)
				terms.GET("/:id", h.Term.GetTerm)
				terms.POST("", middleware.RoleAuth("admin"), h.Term.CreateTerm)
				terms.PUT("/:id", middleware.RoleAuth("admin"), h.Term.UpdateTerm)
				terms.PUT("/:id/activate", middleware.RoleAuth("admin"), h.Term.ActivateTerm)
				terms.DELETE("/:id", middleware.RoleAuth("admin"), h.Term.DeleteTerm)
			}

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/check", h.Attendance.Check)
				attendance.PUT("/status", middleware.RoleAuth("admin", "teacher"), h.Attendance.SetStatus)
				attendance.GET("/daily", middleware.RoleAuth("admin", "teacher"), h.Attendance.ListDaily)
			}

			// 报表模块
			reports := authorized.Group("/reports")
			reports.Use(middleware.RoleAuth("admin", "teacher"))
			{
				reports.GET("/classes", h.Report.AggregateByClass)
				reports.GET("/students", h.Report.AggregateByStudent)
			}

			// 导出模块
			export := authorized.Group("/export")
			export.Use(middleware.RoleAuth("admin", "teacher"))
			{
				export.GET("/attendance.xlsx", h.Export.ExportExcel)
				export.GET("/attendance.pdf", h.Export.ExportPDF)
			}

			// 教学日志模块
			journals := authorized.Group("/journals")
			{
				journals.GET("", h.Journal.ListJournals)
				journals.GET("/:id", h.Journal.GetJournal)
				journals.POST("", middleware.RoleAuth("admin", "teacher"), h.Journal.CreateJournal)
				journals.PUT("/:id", middleware.RoleAuth("admin", "teacher"), h.Journal.UpdateJournal)
				journals.DELETE("/:id", middleware.RoleAuth("admin", "teacher"), h.Journal.DeleteJournal)
			}

			// 课程表模块
			timetables := authorized.Group("/timetables")
			{
				timetables.GET("", h.Timetable.ListTimetable)
				timetables.POST("/import", middleware.RoleAuth("admin", "teacher"), h.Timetable.ImportICS)
				timetables.DELETE("", middleware.RoleAuth("admin"), h.Timetable.ClearTimetable)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.GET("/preferences", h.Notification.GetPreference)
				notifications.PUT("/preferences", h.Notification.UpdatePreference)
			}

			// 考勤设置模块
			settings := authorized.Group("/settings")
			{
				settings.GET("/attendance", h.Setting.GetSetting)
				settings.PUT("/attendance", middleware.RoleAuth("admin"), h.Setting.UpdateSetting)
			}
		}
	}

	return r
}
