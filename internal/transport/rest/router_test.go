package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/vacation-management/internal"
	userDatamodel "github.com/frahmantamala/vacation-management/internal/core/datamodel/user"
	vacationDatamodel "github.com/frahmantamala/vacation-management/internal/core/datamodel/vacation"
	"github.com/frahmantamala/vacation-management/internal/core/events"
	"github.com/frahmantamala/vacation-management/internal/transport/openapi"
	"github.com/frahmantamala/vacation-management/internal/transport/rest"
	"github.com/frahmantamala/vacation-management/internal/user"
	userRepo "github.com/frahmantamala/vacation-management/internal/user/postgres"
	"github.com/frahmantamala/vacation-management/internal/vacation"
	vacationRepo "github.com/frahmantamala/vacation-management/internal/vacation/postgres"
)

func int64Ptr(v int64) *int64 { return &v }

var _ = Describe("Router", func() {
	var (
		gormDB *gorm.DB
		bus    *events.EventBus
		router *chi.Mux
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))

		var err error
		gormDB, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := gormDB.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(gormDB.AutoMigrate(&userDatamodel.User{}, &vacationDatamodel.VacationRequest{})).To(Succeed())
		for _, u := range []*userDatamodel.User{
			{ID: 1, Name: "Admin User", Email: "admin@company.com", Role: "Admin"},
			{ID: 2, Name: "Manager One", Email: "manager1@company.com", Role: "Manager", ManagerID: int64Ptr(1)},
			{ID: 3, Name: "Manager Two", Email: "manager2@company.com", Role: "Manager", ManagerID: int64Ptr(1)},
			{ID: 4, Name: "John Doe", Email: "john@company.com", Role: "Collaborator", ManagerID: int64Ptr(2)},
		} {
			Expect(gormDB.Create(u).Error).To(Succeed())
		}

		bus = events.NewEventBus(lg)
		users := user.NewService(userRepo.NewUserRepository(gormDB), bus, lg)
		vacations := vacation.NewService(vacationRepo.NewVacationRepository(gormDB), users, bus,
			internal.VacationConfig{EnforceTerminalStatus: true, MaxDescriptionLength: 500}, lg)

		doc, err := openapi.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())
		validator, err := openapi.NewValidator(doc, lg)
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Dependencies{
			DB:              sqlx.NewDb(sqlDB, "sqlite3"),
			Driver:          "sqlite",
			AllowedOrigins:  []string{"http://localhost:3000"},
			UserHandler:     user.NewHandler(users),
			VacationHandler: vacation.NewHandler(vacations),
			Validator:       validator,
			Logger:          lg,
		})
	})

	AfterEach(func() {
		bus.Wait()
		sqlDB, err := gormDB.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.Close()
	})

	do := func(method, path, body, userID, role string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if userID != "" {
			req.Header.Set("X-User-Id", userID)
			req.Header.Set("X-User-Role", role)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("reports health without an identity", func() {
		rec := do(http.MethodGet, "/api/v1/health", "", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var body rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Status).To(Equal(rest.HealthHealthy))
		Expect(body.Components).To(HaveKey("sqlite"))

		Expect(do(http.MethodGet, "/api/v1/ping", "", "", "").Code).To(Equal(http.StatusOK))
	})

	It("requires an identity on the API", func() {
		rec := do(http.MethodGet, "/api/v1/vacation-requests", "", "", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("serves the API document", func() {
		rec := do(http.MethodGet, "/openapi.yml", "", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("/api/v1/vacation-requests"))
	})

	It("runs a request through its lifecycle", func() {
		rec := do(http.MethodPost, "/api/v1/vacation-requests",
			`{"userId":4,"startDate":"2024-06-10","endDate":"2024-06-15","description":"Summer"}`, "4", "Collaborator")
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var created map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())
		id := int64(created["id"].(float64))
		path := "/api/v1/vacation-requests/" + jsonNumber(id)

		rec = do(http.MethodPost, path+"/approve", "", "3", "Manager")
		Expect(rec.Code).To(Equal(http.StatusForbidden))

		rec = do(http.MethodPost, path+"/approve", "", "2", "Manager")
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec = do(http.MethodPost, "/api/v1/vacation-requests",
			`{"userId":4,"startDate":"2024-06-14","endDate":"2024-06-20"}`, "4", "Collaborator")
		Expect(rec.Code).To(Equal(http.StatusConflict))

		rec = do(http.MethodPost, "/api/v1/vacation-requests",
			`{"userId":4,"startDate":"2024-06-16","endDate":"2024-06-20"}`, "4", "Collaborator")
		Expect(rec.Code).To(Equal(http.StatusCreated))

		rec = do(http.MethodGet, "/api/v1/vacation-requests/manager/2", "", "2", "Manager")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var forManager []map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &forManager)).To(Succeed())
		Expect(forManager).To(HaveLen(2))
		Expect(forManager[0]).To(HaveKeyWithValue("status", "Approved"))
	})

	It("rejects contract violations before the handler", func() {
		rec := do(http.MethodPost, "/api/v1/vacation-requests", `{"startDate":"2024-06-10"}`, "4", "Collaborator")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("restricts the export to managers and admins", func() {
		Expect(do(http.MethodGet, "/api/v1/vacation-requests/export", "", "4", "Collaborator").Code).To(Equal(http.StatusForbidden))
		Expect(do(http.MethodGet, "/api/v1/vacation-requests/export", "", "2", "Manager").Code).To(Equal(http.StatusOK))
	})

	It("deletes a user with their requests", func() {
		rec := do(http.MethodPost, "/api/v1/vacation-requests",
			`{"userId":4,"startDate":"2024-06-10","endDate":"2024-06-15"}`, "1", "Admin")
		Expect(rec.Code).To(Equal(http.StatusCreated))

		Expect(do(http.MethodDelete, "/api/v1/users/1", "", "1", "Admin").Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodDelete, "/api/v1/users/4", "", "2", "Manager").Code).To(Equal(http.StatusForbidden))
		Expect(do(http.MethodDelete, "/api/v1/users/4", "", "1", "Admin").Code).To(Equal(http.StatusNoContent))

		rec = do(http.MethodGet, "/api/v1/vacation-requests/user/4", "", "1", "Admin")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(strings.TrimSpace(rec.Body.String())).To(Equal("[]"))
	})
})

func jsonNumber(v int64) string {
	data, _ := json.Marshal(v)
	return string(data)
}
