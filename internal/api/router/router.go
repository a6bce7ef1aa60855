package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"classgrid/backend/config"
	"classgrid/backend/internal/api/handler"
	"classgrid/backend/internal/api/middleware"
	"classgrid/backend/internal/dto"
	"classgrid/backend/pkg/jwt"
	"classgrid/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时不启用 Token 黑名单与限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			logger.Fatal("注册自定义校验器失败", zap.Error(err))
		}
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	var blacklist middleware.BlacklistChecker
	if rdb != nil {
		blacklist = rdb
	}
	adminOnly := middleware.RoleAuth("admin")

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 用户模块
			users := authorized.Group("/users", adminOnly)
			{
				users.GET("", h.User.ListUsers)
				users.POST("", h.User.CreateUser)
			}

			// 班级模块
			batches := authorized.Group("/batches")
			{
				batches.GET("", h.Batch.ListBatches)
				batches.GET("/stats", h.Batch.BatchStats)
				batches.GET("/:id", h.Batch.GetBatch)
				batches.POST("", adminOnly, h.Batch.CreateBatch)
				batches.PUT("/:id", adminOnly, h.Batch.UpdateBatch)
				batches.DELETE("/:id", adminOnly, h.Batch.DeleteBatch)
			}

			// 课程模块
			subjects := authorized.Group("/subjects")
			{
				subjects.GET("", h.Subject.ListSubjects)
				subjects.GET("/stats", h.Subject.SubjectStats)
				subjects.GET("/:id", h.Subject.GetSubject)
				subjects.POST("", adminOnly, h.Subject.CreateSubject)
				subjects.PUT("/:id", adminOnly, h.Subject.UpdateSubject)
				subjects.DELETE("/:id", adminOnly, h.Subject.DeleteSubject)
			}

			// 教室模块
			classrooms := authorized.Group("/classrooms")
			{
				classrooms.GET("", h.Classroom.ListClassrooms)
				classrooms.GET("/available", h.Classroom.ListAvailableClassrooms)
				classrooms.GET("/stats", h.Classroom.ClassroomStats)
				classrooms.GET("/:id", h.Classroom.GetClassroom)
				classrooms.POST("", adminOnly, h.Classroom.CreateClassroom)
				classrooms.PUT("/:id", adminOnly, h.Classroom.UpdateClassroom)
				classrooms.DELETE("/:id", adminOnly, h.Classroom.DeleteClassroom)
			}

			// 时间段模块
			timeSlots := authorized.Group("/time-slots")
			{
				timeSlots.GET("", h.TimeSlot.ListTimeSlots)
				timeSlots.GET("/available", h.TimeSlot.ListAvailableTimeSlots)
				timeSlots.GET("/stats", h.TimeSlot.TimeSlotStats)
				timeSlots.GET("/:id", h.TimeSlot.GetTimeSlot)
				timeSlots.POST("", adminOnly, h.TimeSlot.CreateTimeSlot)
				timeSlots.PUT("/:id", adminOnly, h.TimeSlot.UpdateTimeSlot)
				timeSlots.DELETE("/:id", adminOnly, h.TimeSlot.DeleteTimeSlot)
			}

			// 教学分配模块
			assignments := authorized.Group("/assignments")
			{
				assignments.GET("", h.Assignment.ListAssignments)
				assignments.GET("/:id", h.Assignment.GetAssignment)
				assignments.POST("", adminOnly, h.Assignment.CreateAssignment)
				assignments.PUT("/:id", adminOnly, h.Assignment.UpdateAssignment)
				assignments.DELETE("/:id", adminOnly, h.Assignment.DeleteAssignment)
			}

			// 课表模块
			timetable := authorized.Group("/timetable")
			{
				timetable.GET("", h.Timetable.List)
				timetable.GET("/faculty/:id", h.Timetable.ListByFaculty) // 教师仅本人（Handler 层鉴权）
				timetable.GET("/classroom/:id", h.Timetable.ListByClassroom)
				timetable.GET("/validate", h.Timetable.Validate)
				timetable.GET("/conflicts", h.Timetable.Conflicts)
				timetable.POST("/check", h.Timetable.Check)

				timetable.POST("/generate", adminOnly, middleware.RateLimit(rdb, 5, time.Minute), h.Timetable.Generate)
				timetable.PUT("/approve", adminOnly, h.Timetable.Approve)
				timetable.PUT("/publish", adminOnly, h.Timetable.Publish)
				timetable.POST("/entries", adminOnly, h.Timetable.CreateEntry)
				timetable.PUT("/entries/:id", adminOnly, h.Timetable.UpdateEntry)
				timetable.DELETE("/entries/:id", adminOnly, h.Timetable.DeleteEntry)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/timetable.xlsx", h.Export.ExportExcel)
				export.GET("/timetable.ics", h.Export.ExportICS)
			}
		}
	}

	return r
}
