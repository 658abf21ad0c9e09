package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campushub/internal/activity"
	"campushub/internal/attendance"
	"campushub/internal/auth"
	"campushub/internal/booking"
	"campushub/internal/catalog"
	"campushub/internal/config"
	"campushub/internal/dashboard"
	"campushub/internal/httpmiddleware"
	"campushub/internal/queue"
	"campushub/internal/resources"
	"campushub/internal/sessions"
	"campushub/internal/store"
	"campushub/internal/users"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "campushub:events")
	}

	userRepo := users.NewRepository(db.Client)
	userSvc := users.NewService(userRepo, cfg.DBTimeout)
	userHandler := users.NewHandler(userSvc, userRepo, users.TokenConfig{
		Issuer:     cfg.JWTIssuer,
		SigningKey: cfg.JWTSigningKey,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})

	catalogSvc := catalog.NewService(catalog.NewRepository(db.Client), cfg.DBTimeout)
	catalogHandler := catalog.NewHandler(catalogSvc)

	resourceSvc := resources.NewService(resources.NewRepository(db.Client), cfg.DBTimeout)
	resourceHandler := resources.NewHandler(resourceSvc)

	bookingSvc := booking.NewService(booking.NewRepository(db.Client), cfg.DBTimeout)
	bookingHandler := booking.NewHandler(bookingSvc, q)

	sessionSvc := sessions.NewService(sessions.NewRepository(db.Client), catalogSvc, cfg.DBTimeout)
	sessionHandler := sessions.NewHandler(sessionSvc, q)

	attendanceSvc := attendance.NewService(attendance.NewRepository(db.Client), sessionSvc, catalogSvc, userRepo, cfg.DBTimeout)
	attendanceHandler := attendance.NewHandler(attendanceSvc, q)

	statsCache := &dashboard.RedisCache{Client: redisClient.Client}
	dashSvc := dashboard.NewService(dashboard.NewRepository(db.Client), statsCache, cfg.StatsCacheTTL, cfg.DBTimeout)
	dashHandler := dashboard.NewHandler(dashSvc)

	activityHandler := activity.NewHandler(activity.NewRepository(db.Client), cfg.DBTimeout)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/api/auth/login", userHandler.Login)
	r.POST("/api/auth/refresh", userHandler.Refresh)

	api := r.Group("/api", auth.UserAuth(cfg.JWTSigningKey, cfg.JWTIssuer))
	admin := api.Group("", auth.RequireRole(users.RoleAdmin))
	staff := api.Group("", auth.RequireRole(users.RoleAdmin, users.RoleLabAssistant, users.RoleOfficeStaff))
	scanners := api.Group("", auth.RequireRole(users.RoleAdmin, users.RoleLecturer, users.RoleDemo))
	lecturers := api.Group("", auth.RequireRole(users.RoleAdmin, users.RoleLecturer))

	api.GET("/auth/me", userHandler.Me)
	api.GET("/users", userHandler.List)

	admin.POST("/admin/add-user", userHandler.Add)
	admin.GET("/admin/users", userHandler.List)
	admin.DELETE("/admin/users/:id", userHandler.Delete)
	admin.GET("/admin/stats", dashHandler.AdminStats)
	admin.GET("/admin/activity", activityHandler.Recent)

	admin.POST("/departments/add", catalogHandler.AddDepartment)
	api.GET("/departments", catalogHandler.ListDepartments)
	admin.PUT("/departments/:id", catalogHandler.UpdateDepartment)
	admin.DELETE("/departments/:id", catalogHandler.DeleteDepartment)

	admin.POST("/courses", catalogHandler.AddCourse)
	admin.POST("/courses/add", catalogHandler.AddCourse)
	api.GET("/courses", catalogHandler.ListCourses)
	admin.PUT("/courses/:id", catalogHandler.UpdateCourse)
	admin.DELETE("/courses/:id", catalogHandler.DeleteCourse)

	admin.POST("/subjects", catalogHandler.AddSubject)
	api.GET("/subjects", catalogHandler.ListSubjects)
	admin.PUT("/subjects/:id", catalogHandler.UpdateSubject)
	admin.DELETE("/subjects/:id", catalogHandler.DeleteSubject)
	admin.POST("/subjects/:id/enroll-students", catalogHandler.EnrollStudents)
	admin.POST("/subjects/:id/enroll-lecturers", catalogHandler.AssignStaff)

	lecturers.POST("/lecturer/assign-subject", catalogHandler.SelfAssign)
	api.GET("/lecturer/assistants", userHandler.ListAssistants)
	api.GET("/lecturer/subjects/:lecturerId", catalogHandler.AssignedSubjects)
	// gin cannot mix a static segment with the :lecturerId wildcard, so
	// /lecturer/subjects/department/:deptId is matched through the wildcard
	// and dispatched here.
	api.GET("/lecturer/subjects/:lecturerId/:deptId", func(c *gin.Context) {
		if c.Param("lecturerId") != "department" {
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
			return
		}
		catalogHandler.ListSubjectsByDepartment(c)
	})
	lecturers.POST("/lecturer/sessions", sessionHandler.Create)
	api.GET("/lecturer/sessions/:lecturerId", sessionHandler.ByLecturer)
	lecturers.PUT("/lecturer/sessions/:id/cancel", sessionHandler.Cancel)
	api.GET("/lecturer/dashboard-stats/:id", dashHandler.LecturerStats)

	api.POST("/student-subjects/add", catalogHandler.EnrollSelf)
	api.DELETE("/student-subjects/:id", catalogHandler.UnenrollSelf)
	api.GET("/student-subjects/available/:studentId", catalogHandler.AvailableSubjects)
	api.GET("/student-subjects/enrolled/:studentId", catalogHandler.EnrolledSubjects)
	api.GET("/student/dashboard-stats/:id", dashHandler.StudentStats)

	admin.POST("/locations/add", resourceHandler.AddLocation)
	api.GET("/locations", resourceHandler.ListLocations)
	admin.PUT("/locations/:id", resourceHandler.UpdateLocation)
	admin.DELETE("/locations/:id", resourceHandler.DeleteLocation)

	api.GET("/labs", resourceHandler.ListLabs)
	api.POST("/labs/book", bookingHandler.BookLab)
	api.GET("/labs/my-bookings/:userId", bookingHandler.MyBookings)
	staff.GET("/labs/bookings", bookingHandler.PendingBookings)
	staff.POST("/labs/booking/:id/approve", bookingHandler.ApproveBooking)
	staff.POST("/labs/booking/:id/reject", bookingHandler.RejectBooking)

	admin.GET("/manage/labs", resourceHandler.ListLabs)
	admin.POST("/manage/labs", resourceHandler.AddLab)
	admin.PUT("/manage/labs/:id", resourceHandler.UpdateLab)
	admin.DELETE("/manage/labs/:id", resourceHandler.DeleteLocation)
	admin.GET("/manage/equipment", resourceHandler.ListEquipment)
	admin.POST("/manage/equipment", resourceHandler.AddEquipment)
	admin.PUT("/manage/equipment/:id", resourceHandler.UpdateEquipment)
	admin.DELETE("/manage/equipment/:id", resourceHandler.DeleteEquipment)
	staff.POST("/manage/equipment/:id/return", bookingHandler.ReturnEquipment)

	api.GET("/equipment", resourceHandler.ListEquipment)
	api.POST("/equipment/request", bookingHandler.RequestEquipment)
	api.GET("/equipment/my-requests/:userId", bookingHandler.MyRequests)
	staff.GET("/equipment/requests", bookingHandler.PendingRequests)
	staff.POST("/equipment/request/:id/approve", bookingHandler.ApproveRequest)
	staff.POST("/equipment/request/:id/reject", bookingHandler.RejectRequest)

	scanners.POST("/attendance", attendanceHandler.Scan)
	scanners.POST("/assistant/attendance", attendanceHandler.AssistantScan)
	// Serves both /assistant/:id/sessions (the assistant's schedule) and
	// /assistant/session/:id (one session), which gin cannot register as
	// separate routes because the second segment would mix a static path
	// with the :id wildcard.
	api.GET("/assistant/:id/:action", func(c *gin.Context) {
		switch {
		case c.Param("id") == "session":
			c.Params = gin.Params{gin.Param{Key: "id", Value: c.Param("action")}}
			sessionHandler.Get(c)
		case c.Param("action") == "sessions":
			sessionHandler.ByAssistant(c)
		default:
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		}
	})
	api.GET("/sessions/:id/attendance", attendanceHandler.BySession)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}

	log.Println("server exited")
	return nil
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
