package user_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/internal/auth"
	"github.com/frahmantamala/vacation-management/internal/user"
)

var _ = Describe("Handler", func() {
	var router *chi.Mux

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service := user.NewService(NewMockUserRepository(), &MockPublisher{}, logger)
		handler := user.NewHandler(service)
		principals := auth.NewMiddleware(logger)
		rbac := auth.NewRBACAuthorization(logger)

		router = chi.NewRouter()
		router.Route("/users", func(r chi.Router) {
			r.Use(principals.PrincipalMiddleware)
			r.Get("/", handler.ListUsers)
			r.Get("/{id}", handler.GetUser)
			r.Get("/manager/{managerId}", handler.ListByManager)
			r.With(rbac.RequireAdmin()).Post("/", handler.CreateUser)
			r.With(rbac.RequireAdmin()).Put("/{id}", handler.UpdateUser)
			r.With(rbac.RequireAdmin()).Delete("/{id}", handler.DeleteUser)
		})
	})

	do := func(method, path, body, role string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set(auth.HeaderUserID, "1")
		req.Header.Set(auth.HeaderUserRole, role)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	errorCode := func(rec *httptest.ResponseRecorder) string {
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body.Error.Code
	}

	It("lists users for any role", func() {
		rec := do(http.MethodGet, "/users/", "", "Collaborator")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var users []map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &users)).To(Succeed())
		Expect(users).To(HaveLen(3))
		Expect(users[1]).To(HaveKeyWithValue("role", "Manager"))
		Expect(users[1]).To(HaveKeyWithValue("managerId", BeNumerically("==", 1)))
	})

	It("returns 404 for an unknown user", func() {
		rec := do(http.MethodGet, "/users/99", "", "Admin")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeUserNotFound)))
	})

	It("restricts mutations to admins", func() {
		rec := do(http.MethodPost, "/users/", `{"name":"X","email":"x@company.com","role":"Collaborator"}`, "Manager")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeAdminRequired)))
	})

	It("creates a user with a numeric role code", func() {
		rec := do(http.MethodPost, "/users/", `{"name":"X","email":"x@company.com","role":2,"managerId":2}`, "Admin")
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var created map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())
		Expect(created).To(HaveKeyWithValue("role", "Collaborator"))
	})

	It("rejects an unknown role name", func() {
		rec := do(http.MethodPost, "/users/", `{"name":"X","email":"x@company.com","role":"Boss"}`, "Admin")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("refuses to delete an admin", func() {
		rec := do(http.MethodDelete, "/users/1", "", "Admin")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeAdminUndeletable)))
	})

	It("deletes a collaborator with 204 and 404s the second time", func() {
		rec := do(http.MethodDelete, "/users/4", "", "Admin")
		Expect(rec.Code).To(Equal(http.StatusNoContent))

		rec = do(http.MethodDelete, "/users/4", "", "Admin")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})
