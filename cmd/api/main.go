package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "crm-reports/internal/common/api"
	"crm-reports/internal/config"
	"crm-reports/internal/connectors"
	"crm-reports/internal/database"
	"crm-reports/internal/features/audit"
	"crm-reports/internal/features/auth"
	cron_feature "crm-reports/internal/features/cron"
	"crm-reports/internal/features/defaults"
	"crm-reports/internal/features/draft"
	"crm-reports/internal/features/export"
	"crm-reports/internal/features/folder"
	"crm-reports/internal/features/organization"
	"crm-reports/internal/features/record"
	"crm-reports/internal/features/report"
	"crm-reports/internal/features/role"
	"crm-reports/internal/features/schema"
	"crm-reports/internal/features/system"
	"crm-reports/internal/features/user"
	"crm-reports/internal/logger"
	"crm-reports/internal/middleware"
	"crm-reports/pkg/utils"

	_ "crm-reports/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.CORSMiddleware(cfg))

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(
	lc fx.Lifecycle,
	recordRepo record.RecordRepository,
	reportRepo report.ReportRepository,
	draftRepo draft.DraftRepository,
	folderRepo folder.FolderRepository,
	roleRepo role.RoleRepository,
	userRepo user.UserRepository,
	orgRepo organization.OrganizationRepository,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				ensure := map[string]interface{ EnsureIndexes(context.Context) error }{
					"records":       recordRepo,
					"reports":       reportRepo,
					"drafts":        draftRepo,
					"folders":       folderRepo,
					"roles":         roleRepo,
					"users":         userRepo,
					"organizations": orgRepo,
				}
				for name, repo := range ensure {
					if err := repo.EnsureIndexes(ctx); err != nil {
						log.Printf("Failed to ensure %s indexes: %v", name, err)
					}
				}
			}()
			return nil
		},
	})
}

// StartScheduler registers the maintenance jobs and runs them for the
// life of the app.
func StartScheduler(
	lc fx.Lifecycle,
	scheduler cron_feature.Scheduler,
	draftRepo draft.DraftRepository,
	seeder defaults.DefaultsService,
	orgRepo organization.OrganizationRepository,
	zapLogger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for _, job := range cron_feature.MaintenanceJobs(draftRepo, seeder, orgRepo, zapLogger) {
				if err := scheduler.Register(job); err != nil {
					return err
				}
			}
			scheduler.Start()
			return nil
		},
		OnStop: scheduler.Stop,
	})
}

// OpenConnections loads the external SQL connections declared in the
// optional connectors file and tears them down on shutdown.
func OpenConnections(lc fx.Lifecycle, registry *connectors.Registry, cfg *config.Config, zapLogger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.ConnectorsFile == "" {
				return nil
			}
			conns, err := connectors.LoadConnections(cfg.ConnectorsFile)
			if err != nil {
				return err
			}
			for _, cc := range conns {
				if err := registry.Add(ctx, cc); err != nil {
					zapLogger.Warn("external connection not added",
						zap.String("connection", cc.Name), zap.Error(err))
				}
			}
			return nil
		},
		OnStop: registry.Close,
	})
}

// SeedDefaultTenant prepares the development tenant when auth is
// skipped: built-in roles plus the default report catalog.
func SeedDefaultTenant(lc fx.Lifecycle, cfg *config.Config, roles role.RoleService, seeder defaults.DefaultsService) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.SkipAuth || cfg.DefaultTenant == "" {
				return nil
			}
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if _, err := roles.EnsureBuiltinRoles(ctx, cfg.DefaultTenant); err != nil {
					log.Printf("Failed to ensure built-in roles: %v", err)
					return
				}
				if _, err := seeder.EnsureDefaults(ctx, cfg.DefaultTenant); err != nil {
					log.Printf("Failed to ensure default reports: %v", err)
				}
			}()
			return nil
		},
	})
}

// @title           CRM Reports API
// @version         1.0
// @description     Pivot report builder for CRM data: saved reports, per-user drafts, folders, exports and live update events.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.email   support@swagger.io

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			audit.NewAuditRepository,
			organization.NewOrganizationRepository,
			user.NewUserRepository,
			role.NewRoleRepository,
			record.NewRecordRepository,
			report.NewReportRepository,
			draft.NewDraftRepository,
			folder.NewFolderRepository,

			// Schema registry and external connections
			schema.NewRegistry,
			connectors.NewRegistry,

			// Websocket hub and scheduler
			system.NewHub,
			cron_feature.NewScheduler,

			audit.NewAuditService,
			role.NewRoleService,
			auth.NewAuthService,
			record.NewRecordService,
			report.NewReportService,
			draft.NewDraftService,
			export.NewExportService,
			folder.NewFolderService,
			user.NewUserService,
			defaults.NewDefaultsService,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(r record.RecordRepository) schema.RelationLoader { return r },
			func(r *connectors.Registry) record.ExternalReader { return r },
			func(h *system.Hub) report.EventPublisher { return h },
			func(s draft.DraftService) report.DraftOverlay { return s },
			func(r folder.FolderRepository) report.FolderChecker { return r },
			func(r report.ReportRepository) folder.ReportStore { return r },
			func(r folder.FolderRepository) defaults.FolderStore { return r },
			func(s report.ReportService) defaults.ReportWriter { return s },
			func(s role.RoleService) middleware.RoleService { return s },
			func(r user.UserRepository) audit.UserFinder { return r },
			func(r user.UserRepository) auth.UserStore { return r },
			func(s role.RoleService) auth.RoleProvider { return s },
			func(r organization.OrganizationRepository) auth.OrganizationStore { return r },

			// Initialize Controller
			auth.NewAuthController,
			schema.NewSchemaController,
			record.NewRecordController,
			report.NewReportController,
			draft.NewDraftController,
			export.NewExportController,
			folder.NewFolderController,
			audit.NewAuditController,
			role.NewRoleController,
			user.NewUserController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(schema.NewSchemaApi),
			AsRoute(record.NewRecordApi),
			AsRoute(report.NewReportApi),
			AsRoute(draft.NewDraftApi),
			AsRoute(export.NewExportApi),
			AsRoute(folder.NewFolderApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(role.NewRoleApi),
			AsRoute(user.NewUserApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(system.NewWebSocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },

			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartScheduler,
			OpenConnections,
			InitializeIndexes,
			SeedDefaultTenant,
		),
	)

	app.Run()
}
