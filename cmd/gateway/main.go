package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/pathwise/pathwise-lms/internal/api/http"
	"github.com/pathwise/pathwise-lms/internal/assessment"
	auth "github.com/pathwise/pathwise-lms/internal/auth/middleware"
	"github.com/pathwise/pathwise-lms/internal/config"
	"github.com/pathwise/pathwise-lms/internal/content"
	"github.com/pathwise/pathwise-lms/internal/db"
	"github.com/pathwise/pathwise-lms/internal/progress"
	"github.com/pathwise/pathwise-lms/internal/rbac"
	"github.com/pathwise/pathwise-lms/internal/storage"
	syncx "github.com/pathwise/pathwise-lms/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	contentStore := content.NewSQLStore(dbh)
	progressStore := progress.NewSQLStore(dbh)
	assessStore := assessment.NewSQLStore(dbh)

	engine := progress.NewEngine(progressStore)
	evaluator := assessment.NewEvaluator(nil)
	assessSvc := assessment.NewService(assessStore, progressStore, evaluator)
	events := syncx.NewEventRepo(dbh, cfg.SiteID)

	// --- Auth (local JWT) ---
	secret := getenvOr("AUTH_HMAC_SECRET", "supersecret-dev-key")
	authSvc := auth.NewAuthService(secret)

	if cfg.EnableLocalAuth {
		if err := auth.EnsureAdmin(ctx, dbh, cfg.AdminUser, cfg.AdminPassHash); err != nil {
			log.Fatalf("seed admin user: %v", err)
		}
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
		if cfg.PublicURL != "" {
			origins = append(origins, cfg.PublicURL)
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Authoring (teacher/admin)
		pr.With(rbac.Require("course:author")).
			Post("/courses", api.CreateCourseHandler(contentStore))
		pr.With(rbac.Require("course:author")).
			Post("/courses/{courseID}/modules", api.AddModuleHandler(contentStore))
		pr.With(rbac.Require("course:author")).
			Post("/modules/{moduleID}/lessons", api.AddLessonHandler(contentStore))
		pr.With(rbac.Require("assessment:author")).
			Post("/assessments", api.UpsertAssessmentHandler(assessStore))

		// Course player
		pr.With(rbac.Require("course:view")).
			Get("/courses/{courseID}/tree", api.GetCourseTreeHandler(contentStore))
		pr.With(rbac.Require("course:view")).
			Get("/courses/{courseID}/resume", api.ResumeHandler(contentStore, engine))
		pr.With(rbac.Require("course:view")).
			Post("/courses/{courseID}/navigate", api.NavigateHandler(contentStore))
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
			Get("/courses/{courseID}/progress", api.CourseProgressHandler(contentStore, engine))
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
			Get("/courses/{courseID}/modules/{moduleIndex}/progress", api.ModuleProgressHandler(contentStore, engine))
		pr.With(rbac.Require("lesson:complete")).
			Post("/lessons/{lessonID}/complete", api.CompleteLessonHandler(contentStore, engine, events))

		// Assessments
		pr.With(rbac.Require("assessment:take")).
			Get("/assessments/{assessmentID}", api.GetAssessmentHandler(assessStore))
		pr.With(rbac.Require("attempt:create")).
			Post("/assessments/{assessmentID}/attempts", api.StartAttemptHandler(assessSvc, assessStore, events))
		pr.With(rbac.Require("attempt:save")).
			Post("/attempts/{attemptID}/responses", api.SaveAttemptResponsesHandler(assessSvc))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{attemptID}/submit", api.SubmitAttemptHandler(assessSvc, contentStore, engine, events))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}", api.GetAttemptHandler(assessSvc))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(assessSvc))

		// Offline -> online replay
		pr.With(rbac.Require("sync:export")).
			Get("/sync/events", api.SyncEventsHandler(events))

		// Users (teacher/admin)
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))

		// Lesson media
		pr.Route("/assets", func(ar chi.Router) {
			ar.Use(rbac.RequireAny("media:upload", "course:view"))
			api.MountAssets(ar, bs)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func getenvOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
