package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
})

var _ = Describe("RequestID", func() {
	It("generates an id and exposes it on the context", func() {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(seen).NotTo(BeEmpty())
		Expect(rec.Header().Get(HeaderRequestID)).To(Equal(seen))
	})

	It("reuses the caller's id", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		rec := httptest.NewRecorder()
		RequestID(okHandler).ServeHTTP(rec, req)

		Expect(rec.Header().Get(HeaderRequestID)).To(Equal("abc-123"))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("turns a panic into a 500 error body", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		h := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).To(ContainSubstring("INTERNAL_ERROR"))
	})
})

var _ = Describe("CORS", func() {
	handler := CORS([]string{"http://localhost:3000"})(okHandler)

	It("answers preflight requests from allowed origins", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/users", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))
		Expect(rec.Header().Get("Access-Control-Allow-Headers")).To(ContainSubstring("X-User-Role"))
	})

	It("does not allow other origins", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("logs the request without sensitive fields and keeps the body readable", func() {
		var out bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&out, nil))

		var received string
		h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			received = string(data)
			w.WriteHeader(http.StatusCreated)
		}))

		payload := `{"name":"John","email":"john@company.com"}`
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(payload)))

		Expect(received).To(Equal(payload))
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(out.String()).NotTo(ContainSubstring("john@company.com"))
		Expect(out.String()).To(ContainSubstring("/api/v1/users"))
	})

	It("caps the captured response body", func() {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), body: &bytes.Buffer{}}
		_, err := rw.Write(bytes.Repeat([]byte("x"), maxLoggedBody+100))
		Expect(err).NotTo(HaveOccurred())
		Expect(rw.body.Len()).To(Equal(maxLoggedBody))
		Expect(rw.size).To(Equal(maxLoggedBody + 100))
	})

	It("masks nested sensitive keys", func() {
		filtered := filterSensitiveBody([]byte(`{"users":[{"Email":"a@b.c","name":"A"}]}`))
		Expect(filtered).To(ContainSubstring(`"Email":"[FILTERED]"`))
		Expect(filtered).To(ContainSubstring(`"name":"A"`))
	})
})
