package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/registrar/internal/app/controllers"
	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/middleware"
)

// Controllers groups every HTTP handler set
type Controllers struct {
	Auth       *controllers.AuthController
	Student    *controllers.StudentController
	Lookup     *controllers.LookupController
	Major      *controllers.MajorController
	Subject    *controllers.SubjectController
	Schedule   *controllers.ScheduleController
	Attendance *controllers.AttendanceController
	Scan       *controllers.ScanController
	Transfer   *controllers.TransferController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	// Health check endpoint (public)
	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})

	// --- Public Auth routes ---
	v1.POST("/auth/login", c.Auth.Login)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)

	authenticated.GET("/auth/me", c.Auth.Me)
	operators := authenticated.Group("/operators", adminOnly)
	{
		operators.GET("", c.Auth.ListOperators)
		operators.POST("", c.Auth.CreateOperator)
	}

	students := authenticated.Group("/students")
	{
		students.GET("", c.Student.GetAllStudents)
		students.GET("/search", c.Student.SearchStudents)
		students.GET("/export", c.Transfer.ExportStudents)
		students.POST("/import", c.Transfer.ImportStudents)
		students.POST("", c.Student.CreateStudent)
		students.GET("/:id", c.Student.GetStudentByID)
		students.PUT("/:id", c.Student.UpdateStudent)
		students.DELETE("/:id", c.Student.DeleteStudent)

		students.GET("/:id/photo", c.Student.GetPhoto)
		students.PUT("/:id/photo", c.Student.UploadPhoto)
		students.DELETE("/:id/photo", c.Student.DeletePhoto)

		students.GET("/:id/schedule", c.Student.GetSchedule)

		students.GET("/:id/absences", c.Student.GetAbsences)
		students.POST("/:id/absences", c.Student.RecordAbsence)
		students.DELETE("/:id/absences/:absenceId", c.Student.DeleteAbsence)
	}

	// Name-only lookup tables. Reads are open to every operator, changes need admin.
	lookups := map[string]models.LookupTable{
		"/departments":    models.TableDepartment,
		"/classes":        models.TableClass,
		"/academic-years": models.TableAcademicYear,
	}
	for path, table := range lookups {
		group := authenticated.Group(path)
		group.GET("", c.Lookup.List(table))
		group.GET("/:id", c.Lookup.Get(table))

		protected := group.Group("", adminOnly)
		protected.POST("", c.Lookup.Create(table))
		protected.PUT("/:id", c.Lookup.Rename(table))
		protected.DELETE("/:id", c.Lookup.Delete(table))
	}

	majors := authenticated.Group("/majors")
	{
		majors.GET("", c.Major.GetAllMajors)
		majors.GET("/:id", c.Major.GetMajorByID)

		majorsProtected := majors.Group("", adminOnly)
		majorsProtected.POST("", c.Major.CreateMajor)
		majorsProtected.PUT("/:id", c.Major.UpdateMajor)
		majorsProtected.DELETE("/:id", c.Major.DeleteMajor)
	}

	subjects := authenticated.Group("/subjects")
	{
		subjects.GET("", c.Subject.GetAllSubjects)
		subjects.GET("/:id", c.Subject.GetSubjectByID)

		subjectsProtected := subjects.Group("", adminOnly)
		subjectsProtected.POST("", c.Subject.CreateSubject)
		subjectsProtected.PUT("/:id", c.Subject.UpdateSubject)
		subjectsProtected.DELETE("/:id", c.Subject.DeleteSubject)
	}

	schedules := authenticated.Group("/schedules")
	{
		schedules.GET("", c.Schedule.SearchSchedules)
		schedules.GET("/:id", c.Schedule.GetScheduleByID)

		schedulesProtected := schedules.Group("", adminOnly)
		schedulesProtected.POST("", c.Schedule.CreateSchedule)
		schedulesProtected.PUT("/:id", c.Schedule.UpdateSchedule)
		schedulesProtected.DELETE("/:id", c.Schedule.DeleteSchedule)
	}

	attendance := authenticated.Group("/attendance")
	{
		attendance.POST("", c.Attendance.RecordAttendance)
		attendance.GET("/roster", c.Attendance.GetRoster)
		attendance.POST("/batch", c.Attendance.SaveBatch)
		attendance.GET("/report", c.Attendance.GetReport)
		attendance.GET("/daily", c.Attendance.GetDailyLog)
		attendance.GET("/sheet", c.Attendance.ExportSheet)
		attendance.POST("/sweep", adminOnly, c.Attendance.SweepAbsences)
	}

	scans := authenticated.Group("/scans")
	{
		scans.POST("", c.Scan.StartSession)
		scans.GET("/:sessionId", c.Scan.GetSession)
		scans.POST("/:sessionId/frames", c.Scan.PostFrame)
		scans.DELETE("/:sessionId", c.Scan.CloseSession)
		scans.GET("/:sessionId/ws", c.Scan.Stream)
	}
}
