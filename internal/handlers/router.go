package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories/casdoor"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/services"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/utils"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

type HandlerManager struct {
	courseHandler     *CourseHandler
	courseworkHandler *CourseworkHandler
	enrollmentHandler *EnrollmentHandler
	submissionHandler *SubmissionHandler
	userHandler       *UserHandler
	authMiddleware    *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	resolver *casdoor.IdentityResolver,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(resolver, serviceManager.User())

	return &HandlerManager{
		courseHandler:     NewCourseHandler(serviceManager.Course(), validator, logger),
		courseworkHandler: NewCourseworkHandler(serviceManager.Coursework(), validator, logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), serviceManager.RosterExport(), validator, logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), validator, logger),
		userHandler:       NewUserHandler(serviceManager.User(), validator, logger),
		authMiddleware:    authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware()) // Apply authentication to all API routes
	{
		// Course routes
		courses := v1.Group("/courses")
		{
			// Create/modify courses - Teachers and Admins only
			courses.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.courseHandler.CreateCourse)
			courses.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.courseHandler.DeleteCourse)

			// View courses - All authenticated users
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.GET("/teacher/:teacher_id", hm.courseHandler.GetCoursesByTeacher)

			// Stats - Teachers and Admins only
			courses.GET("/:id/stats", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.courseHandler.GetCourseStats)

			// Coursework under a course
			courses.POST("/:id/coursework", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.courseworkHandler.CreateCoursework)
			courses.GET("/:id/coursework", hm.courseworkHandler.ListCourseworkByCourse)

			// Enrollment management; the service layer decides who may
			// enroll whom (students self-enroll, owners and admins manage)
			courses.POST("/:id/enrollments", hm.enrollmentHandler.EnrollStudent)
			courses.DELETE("/:id/enrollments/:student_id", hm.enrollmentHandler.UnenrollStudent)

			// Roster - Teachers and Admins only
			courses.GET("/:id/roster", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.enrollmentHandler.GetCourseRoster)
			courses.GET("/:id/roster/export", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.enrollmentHandler.ExportCourseRoster)
		}

		// Coursework routes
		coursework := v1.Group("/coursework")
		{
			coursework.GET("/:id", hm.courseworkHandler.GetCoursework)
			coursework.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.courseworkHandler.UpdateCoursework)
			coursework.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.courseworkHandler.DeleteCoursework)

			// Submissions - Students submit, Teachers and Admins review
			coursework.POST("/:id/submissions", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.submissionHandler.SubmitWork)
			coursework.GET("/:id/submissions", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.submissionHandler.ListSubmissionsByCoursework)
		}

		// Student-scoped routes; the service layer enforces self-or-admin
		students := v1.Group("/students")
		{
			students.GET("/:student_id/enrollments", hm.enrollmentHandler.GetStudentEnrollments)
			students.GET("/:student_id/submissions", hm.submissionHandler.GetStudentSubmissions)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.userHandler.ListUsers)
			users.GET("/me", hm.userHandler.GetCurrentUser)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id/profile", hm.userHandler.UpdateProfile)
			users.PUT("/:id/role", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.UpdateRole)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "lms-service",
		})
	})
}
