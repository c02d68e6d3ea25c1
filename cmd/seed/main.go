package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"crm-reports/internal/common/models"
	"crm-reports/internal/config"
	"crm-reports/internal/connectors"
	"crm-reports/internal/database"
	"crm-reports/internal/features/audit"
	"crm-reports/internal/features/defaults"
	"crm-reports/internal/features/folder"
	"crm-reports/internal/features/organization"
	"crm-reports/internal/features/record"
	"crm-reports/internal/features/report"
	"crm-reports/internal/features/role"
	"crm-reports/internal/features/schema"
	"crm-reports/internal/features/system"
	"crm-reports/internal/features/user"
	"crm-reports/internal/logger"
	"crm-reports/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// The demo organization keeps a fixed id so DEFAULT_TENANT stays
// stable across re-seeds in development.
const (
	demoOrgHex    = "66aa0d2e9f1c4b3a78e5d601"
	demoOrgName   = "Demo Organization"
	adminUsername = "admin"
	adminPassword = "admin123"
)

// Seed provisions the demo organization with an admin login, sample
// CRM records and the built-in report catalog, then shuts the process
// down. Every step is get-or-create, so re-running is safe.
func Seed(
	lc fx.Lifecycle,
	orgRepo organization.OrganizationRepository,
	roleService role.RoleService,
	userRepo user.UserRepository,
	recordRepo record.RecordRepository,
	seeder defaults.DefaultsService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()

				logger.Info("🌱 Starting Demo Seeding...")

				// 0. Demo Organization. The owner id is generated up
				// front, like registration does, because the user row
				// cannot be written until the tenant context exists.
				adminID := primitive.NewObjectID()
				existingAdmin, adminErr := userRepo.FindByUsernameGlobal(ctx, adminUsername)
				if adminErr == nil {
					adminID = existingAdmin.ID
				}

				var orgID primitive.ObjectID
				existingOrg, err := orgRepo.FindBySlug(ctx, utils.Slugify(demoOrgName))
				if err == nil {
					logger.Info("Organization exists, skipping", zap.String("organization", demoOrgName))
					orgID = existingOrg.ID
				} else {
					fixedOrgID, _ := primitive.ObjectIDFromHex(demoOrgHex)
					newOrg := models.Organization{
						ID:        fixedOrgID,
						Name:      demoOrgName,
						Slug:      utils.Slugify(demoOrgName),
						OwnerID:   adminID,
						CreatedAt: time.Now(),
						UpdatedAt: time.Now(),
					}
					if err := orgRepo.Create(ctx, &newOrg); err != nil {
						logger.Fatal("Failed to create organization", zap.Error(err))
					}
					logger.Info("Organization created", zap.String("organization", demoOrgName), zap.String("id", newOrg.ID.Hex()))
					orgID = newOrg.ID
				}

				// Enforce Organization Context for subsequent repos
				ctx = context.WithValue(ctx, models.TenantIDKey, orgID.Hex())

				// 1. Built-in Roles
				builtins, err := roleService.EnsureBuiltinRoles(ctx, orgID.Hex())
				if err != nil {
					logger.Fatal("Failed to ensure built-in roles", zap.Error(err))
				}
				logger.Info("Built-in roles ensured", zap.Int("count", len(builtins)))

				// 2. Admin User
				if adminErr == nil {
					logger.Info("User exists, skipping", zap.String("username", adminUsername))
				} else {
					hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
					if err != nil {
						logger.Fatal("Failed to hash password", zap.Error(err))
					}
					admin := models.User{
						ID:        adminID,
						Username:  adminUsername,
						Password:  string(hashed),
						Email:     "admin@demo.local",
						FirstName: "Demo",
						LastName:  "Admin",
						Status:    "active",
						Roles:     []primitive.ObjectID{builtins[role.RoleAdmin]},
					}
					if err := userRepo.Create(ctx, &admin); err != nil {
						logger.Fatal("Failed to create user", zap.String("username", adminUsername), zap.Error(err))
					}
					logger.Info("User created", zap.String("username", adminUsername))
				}

				// seedSection inserts the rows once and returns display
				// value to record id, so later sections can reference
				// earlier ones. A section that already has records is
				// left alone and its existing ids are read back instead.
				seedSection := func(section, displayField string, rows []map[string]interface{}) map[string]string {
					ids := map[string]string{}

					count, err := recordRepo.Count(ctx, section, bson.M{})
					if err != nil {
						logger.Error("Failed to count records", zap.String("section", section), zap.Error(err))
						return ids
					}
					if count > 0 {
						logger.Info("Section has records, skipping", zap.String("section", section), zap.Int64("count", count))
						choices, err := recordRepo.ListChoices(ctx, section, displayField)
						if err != nil {
							logger.Error("Failed to read existing records", zap.String("section", section), zap.Error(err))
							return ids
						}
						for _, c := range choices {
							ids[c.Display] = c.Value
						}
						return ids
					}

					for _, row := range rows {
						id, err := recordRepo.Create(ctx, section, row, adminID.Hex())
						if err != nil {
							logger.Error("Failed to create record", zap.String("section", section), zap.Error(err))
							continue
						}
						ids[fmt.Sprintf("%v", row[displayField])] = id.Hex()
					}
					logger.Info("Demo records created", zap.String("section", section), zap.Int("count", len(rows)))
					return ids
				}

				// 3. Demo Records, reference sections first
				statusIDs := seedSection("lead_statuses", "name", demoLeadStatuses())
				stageIDs := seedSection("opportunity_stages", "name", demoOpportunityStages())
				accountIDs := seedSection("accounts", "name", demoAccounts())
				seedSection("contacts", "last_name", demoContacts(accountIDs))
				seedSection("leads", "last_name", demoLeads(statusIDs))
				seedSection("opportunities", "name", demoOpportunities(stageIDs, accountIDs))

				// 4. Built-in Folders & Reports
				result, err := seeder.EnsureDefaults(ctx, orgID.Hex())
				if err != nil {
					logger.Error("Failed to ensure default reports", zap.Error(err))
				} else {
					logger.Info("Default reports ensured",
						zap.Int("folders_created", result.FoldersCreated),
						zap.Int("reports_created", result.ReportsCreated),
					)
				}

				logger.Info("✅ Seeding Complete!",
					zap.String("organization", orgID.Hex()),
					zap.String("username", adminUsername),
				)
			}()
			return nil
		},
	})
}

func demoLeadStatuses() []map[string]interface{} {
	return []map[string]interface{}{
		{"name": "New", "order": 1, "probability": 10, "is_final": false},
		{"name": "Contacted", "order": 2, "probability": 25, "is_final": false},
		{"name": "Qualified", "order": 3, "probability": 60, "is_final": false},
		{"name": "Converted", "order": 4, "probability": 100, "is_final": true},
		{"name": "Lost", "order": 5, "probability": 0, "is_final": true},
	}
}

func demoOpportunityStages() []map[string]interface{} {
	return []map[string]interface{}{
		{"name": "Prospecting", "order": 1, "probability": 10, "is_final": false, "stage_type": "open"},
		{"name": "Qualification", "order": 2, "probability": 25, "is_final": false, "stage_type": "open"},
		{"name": "Proposal", "order": 3, "probability": 55, "is_final": false, "stage_type": "open"},
		{"name": "Negotiation", "order": 4, "probability": 75, "is_final": false, "stage_type": "open"},
		{"name": "Closed Won", "order": 5, "probability": 100, "is_final": true, "stage_type": "closed_won"},
		{"name": "Closed Lost", "order": 6, "probability": 0, "is_final": true, "stage_type": "closed_lost"},
	}
}

func demoAccounts() []map[string]interface{} {
	return []map[string]interface{}{
		{"name": "Globex Corporation", "industry": "technology", "no_of_employees": 1200, "annual_revenue": 48000000, "website": "globex.example.com", "city": "San Francisco", "state": "CA"},
		{"name": "Initech", "industry": "finance", "no_of_employees": 350, "annual_revenue": 12500000, "website": "initech.example.com", "city": "Austin", "state": "TX"},
		{"name": "Umbrella Health", "industry": "healthcare", "no_of_employees": 5400, "annual_revenue": 220000000, "website": "umbrella.example.com", "city": "Boston", "state": "MA"},
		{"name": "Stark Manufacturing", "industry": "manufacturing", "no_of_employees": 2100, "annual_revenue": 95000000, "website": "stark.example.com", "city": "Detroit", "state": "MI"},
		{"name": "Wayne Retail Group", "industry": "retail", "no_of_employees": 800, "annual_revenue": 31000000, "website": "wayne.example.com", "city": "Chicago", "state": "IL"},
		{"name": "Pioneer Academy", "industry": "education", "no_of_employees": 150, "annual_revenue": 4200000, "website": "pioneer.example.com", "city": "Denver", "state": "CO"},
	}
}

func demoContacts(accountIDs map[string]string) []map[string]interface{} {
	return []map[string]interface{}{
		{"first_name": "Alice", "last_name": "Nguyen", "email": "alice.nguyen@globex.example.com", "contact_number": "+1-415-555-0101", "account": accountIDs["Globex Corporation"], "city": "San Francisco"},
		{"first_name": "Brian", "last_name": "Okafor", "email": "brian.okafor@initech.example.com", "contact_number": "+1-512-555-0102", "account": accountIDs["Initech"], "city": "Austin"},
		{"first_name": "Carla", "last_name": "Mendes", "email": "carla.mendes@umbrella.example.com", "contact_number": "+1-617-555-0103", "account": accountIDs["Umbrella Health"], "city": "Boston"},
		{"first_name": "Derek", "last_name": "Schmidt", "email": "derek.schmidt@stark.example.com", "contact_number": "+1-313-555-0104", "account": accountIDs["Stark Manufacturing"], "city": "Detroit"},
		{"first_name": "Elena", "last_name": "Petrova", "email": "elena.petrova@wayne.example.com", "contact_number": "+1-312-555-0105", "account": accountIDs["Wayne Retail Group"], "city": "Chicago"},
		{"first_name": "Farid", "last_name": "Hassan", "email": "farid.hassan@pioneer.example.com", "contact_number": "+1-720-555-0106", "account": accountIDs["Pioneer Academy"], "city": "Denver"},
		{"first_name": "Grace", "last_name": "Lindqvist", "email": "grace.lindqvist@globex.example.com", "contact_number": "+1-415-555-0107", "account": accountIDs["Globex Corporation"], "city": "Oakland"},
		{"first_name": "Hugo", "last_name": "Alvarez", "email": "hugo.alvarez@umbrella.example.com", "contact_number": "+1-617-555-0108", "account": accountIDs["Umbrella Health"], "city": "Cambridge"},
	}
}

func demoLeads(statusIDs map[string]string) []map[string]interface{} {
	return []map[string]interface{}{
		{"first_name": "Ivy", "last_name": "Tanaka", "email": "ivy.tanaka@acmelog.example.com", "lead_company": "Acme Logistics", "lead_source": "web", "lead_status": statusIDs["New"], "industry": "technology", "no_of_employees": 90, "annual_revenue": 3800000, "city": "Seattle", "state": "WA", "lead_score": 35, "is_convert": false},
		{"first_name": "Jonas", "last_name": "Weber", "email": "jonas.weber@brightpay.example.com", "lead_company": "BrightPay", "lead_source": "referral", "lead_status": statusIDs["Contacted"], "industry": "finance", "no_of_employees": 45, "annual_revenue": 2100000, "city": "New York", "state": "NY", "lead_score": 52, "is_convert": false},
		{"first_name": "Keiko", "last_name": "Sato", "email": "keiko.sato@medline.example.com", "lead_company": "Medline Clinics", "lead_source": "trade_show", "lead_status": statusIDs["Qualified"], "industry": "healthcare", "no_of_employees": 240, "annual_revenue": 15600000, "city": "Portland", "state": "OR", "lead_score": 74, "is_convert": false},
		{"first_name": "Liam", "last_name": "Byrne", "email": "liam.byrne@forgeworks.example.com", "lead_company": "ForgeWorks", "lead_source": "cold_call", "lead_status": statusIDs["New"], "industry": "manufacturing", "no_of_employees": 520, "annual_revenue": 28000000, "city": "Cleveland", "state": "OH", "lead_score": 28, "is_convert": false},
		{"first_name": "Maya", "last_name": "Kapoor", "email": "maya.kapoor@shopline.example.com", "lead_company": "Shopline", "lead_source": "advertisement", "lead_status": statusIDs["Contacted"], "industry": "retail", "no_of_employees": 130, "annual_revenue": 7400000, "city": "Miami", "state": "FL", "lead_score": 46, "is_convert": false},
		{"first_name": "Noah", "last_name": "Fischer", "email": "noah.fischer@eduplex.example.com", "lead_company": "Eduplex", "lead_source": "web", "lead_status": statusIDs["Qualified"], "industry": "education", "no_of_employees": 60, "annual_revenue": 1900000, "city": "Madison", "state": "WI", "lead_score": 68, "is_convert": false},
		{"first_name": "Olga", "last_name": "Ivanova", "email": "olga.ivanova@cloudpeak.example.com", "lead_company": "CloudPeak", "lead_source": "referral", "lead_status": statusIDs["Converted"], "industry": "technology", "no_of_employees": 310, "annual_revenue": 22500000, "city": "San Jose", "state": "CA", "lead_score": 91, "is_convert": true},
		{"first_name": "Pablo", "last_name": "Rojas", "email": "pablo.rojas@harborfin.example.com", "lead_company": "Harbor Financial", "lead_source": "trade_show", "lead_status": statusIDs["Lost"], "industry": "finance", "no_of_employees": 85, "annual_revenue": 5100000, "city": "Tampa", "state": "FL", "lead_score": 22, "is_convert": false},
		{"first_name": "Quinn", "last_name": "Murphy", "email": "quinn.murphy@carewell.example.com", "lead_company": "CareWell Group", "lead_source": "web", "lead_status": statusIDs["Contacted"], "industry": "healthcare", "no_of_employees": 410, "annual_revenue": 33000000, "city": "Nashville", "state": "TN", "lead_score": 58, "is_convert": false},
		{"first_name": "Rosa", "last_name": "Lombardi", "email": "rosa.lombardi@steelco.example.com", "lead_company": "SteelCo", "lead_source": "cold_call", "lead_status": statusIDs["Qualified"], "industry": "manufacturing", "no_of_employees": 780, "annual_revenue": 61000000, "city": "Pittsburgh", "state": "PA", "lead_score": 77, "is_convert": false},
		{"first_name": "Samir", "last_name": "Haddad", "email": "samir.haddad@quickmart.example.com", "lead_company": "QuickMart", "lead_source": "advertisement", "lead_status": statusIDs["Converted"], "industry": "retail", "no_of_employees": 200, "annual_revenue": 12800000, "city": "Phoenix", "state": "AZ", "lead_score": 88, "is_convert": true},
		{"first_name": "Tara", "last_name": "O'Connell", "email": "tara.oconnell@learnly.example.com", "lead_company": "Learnly", "lead_source": "web", "lead_status": statusIDs["New"], "industry": "education", "no_of_employees": 25, "annual_revenue": 800000, "city": "Boulder", "state": "CO", "lead_score": 31, "is_convert": false},
	}
}

func demoOpportunities(stageIDs, accountIDs map[string]string) []map[string]interface{} {
	return []map[string]interface{}{
		{"name": "Globex Platform Renewal", "amount": 145000, "quantity": 1, "close_date": demoDate(2026, time.September, 30), "stage": stageIDs["Negotiation"], "probability": 75, "opportunity_score": 82, "account": accountIDs["Globex Corporation"], "opportunity_type": "existing_business", "lead_source": "referral", "forecast_category": "commit"},
		{"name": "Globex Analytics Add-on", "amount": 38000, "quantity": 40, "close_date": demoDate(2026, time.November, 15), "stage": stageIDs["Proposal"], "probability": 55, "opportunity_score": 61, "account": accountIDs["Globex Corporation"], "opportunity_type": "existing_business", "lead_source": "web", "forecast_category": "best_case"},
		{"name": "Initech Reporting Rollout", "amount": 52000, "quantity": 25, "close_date": demoDate(2026, time.October, 10), "stage": stageIDs["Qualification"], "probability": 25, "opportunity_score": 44, "account": accountIDs["Initech"], "opportunity_type": "new_business", "lead_source": "trade_show", "forecast_category": "pipeline"},
		{"name": "Umbrella Compliance Suite", "amount": 260000, "quantity": 3, "close_date": demoDate(2026, time.December, 18), "stage": stageIDs["Proposal"], "probability": 55, "opportunity_score": 70, "account": accountIDs["Umbrella Health"], "opportunity_type": "new_business", "lead_source": "referral", "forecast_category": "best_case"},
		{"name": "Umbrella Records Migration", "amount": 98000, "quantity": 1, "close_date": demoDate(2026, time.June, 30), "stage": stageIDs["Closed Won"], "probability": 100, "opportunity_score": 95, "account": accountIDs["Umbrella Health"], "opportunity_type": "existing_business", "lead_source": "web", "forecast_category": "commit"},
		{"name": "Stark Floor Telemetry", "amount": 175000, "quantity": 12, "close_date": demoDate(2026, time.August, 5), "stage": stageIDs["Closed Lost"], "probability": 0, "opportunity_score": 18, "account": accountIDs["Stark Manufacturing"], "opportunity_type": "new_business", "lead_source": "cold_call", "forecast_category": "omitted"},
		{"name": "Stark Supplier Portal", "amount": 64000, "quantity": 8, "close_date": demoDate(2026, time.October, 28), "stage": stageIDs["Prospecting"], "probability": 10, "opportunity_score": 33, "account": accountIDs["Stark Manufacturing"], "opportunity_type": "new_business", "lead_source": "advertisement", "forecast_category": "pipeline"},
		{"name": "Wayne Loyalty Program", "amount": 83000, "quantity": 60, "close_date": demoDate(2026, time.September, 12), "stage": stageIDs["Negotiation"], "probability": 75, "opportunity_score": 79, "account": accountIDs["Wayne Retail Group"], "opportunity_type": "new_business", "lead_source": "web", "forecast_category": "commit"},
		{"name": "Wayne POS Refresh", "amount": 120000, "quantity": 150, "close_date": demoDate(2026, time.May, 20), "stage": stageIDs["Closed Won"], "probability": 100, "opportunity_score": 90, "account": accountIDs["Wayne Retail Group"], "opportunity_type": "existing_business", "lead_source": "referral", "forecast_category": "commit"},
		{"name": "Pioneer Campus Licenses", "amount": 21000, "quantity": 150, "close_date": demoDate(2026, time.November, 2), "stage": stageIDs["Qualification"], "probability": 25, "opportunity_score": 41, "account": accountIDs["Pioneer Academy"], "opportunity_type": "new_business", "lead_source": "trade_show", "forecast_category": "pipeline"},
	}
}

// demoDate pins close dates to midnight UTC, the same normalization
// date filters apply when they parse query values.
func demoDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,

			organization.NewOrganizationRepository,
			role.NewRoleRepository,
			role.NewRoleService,
			user.NewUserRepository,
			record.NewRecordRepository,
			record.NewRecordService,
			report.NewReportRepository,
			report.NewReportService,
			folder.NewFolderRepository,
			defaults.NewDefaultsService,
			schema.NewRegistry,
			connectors.NewRegistry,
			system.NewHub,
			audit.NewAuditRepository,
			audit.NewAuditService,

			func(r record.RecordRepository) schema.RelationLoader { return r },
			func(r *connectors.Registry) record.ExternalReader { return r },
			func(h *system.Hub) report.EventPublisher { return h },
			func(r folder.FolderRepository) report.FolderChecker { return r },
			func(r folder.FolderRepository) defaults.FolderStore { return r },
			func(s report.ReportService) defaults.ReportWriter { return s },
			func(r user.UserRepository) audit.UserFinder { return r },
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()
}
