package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/okian/readiness/internal/adapters/http/api"
	"github.com/okian/readiness/internal/adapters/repository"
	service "github.com/okian/readiness/internal/app"
	"github.com/okian/readiness/internal/auth"
	"github.com/okian/readiness/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// downHistory fails like an unreachable database.
type downHistory struct{}

func (downHistory) Append(context.Context, model.AssessmentRecord) error {
	return repository.ErrUnavailable
}

func (downHistory) QueryByOwner(context.Context, string) ([]model.AssessmentRecord, error) {
	return nil, repository.ErrUnavailable
}

// heldHistory holds each Append until the test lets it finish.
type heldHistory struct {
	entered chan struct{}
	outcome chan error
}

func (h heldHistory) Append(context.Context, model.AssessmentRecord) error {
	h.entered <- struct{}{}
	return <-h.outcome
}

func (heldHistory) QueryByOwner(context.Context, string) ([]model.AssessmentRecord, error) {
	return []model.AssessmentRecord{}, nil
}

type fixture struct {
	srv  *httptest.Server
	gate *auth.Gate
}

func newFixture(h repository.History, opts ...auth.Option) fixture {
	gate, err := auth.New(append([]auth.Option{
		auth.WithSigningKey([]byte("api-test-key")),
		auth.WithBcryptCost(bcrypt.MinCost),
	}, opts...)...)
	if err != nil {
		panic(err)
	}
	svc := service.New(service.WithHistory(h), service.WithStoreTimeout(time.Second))
	srv := httptest.NewServer(api.NewServer(svc, gate, svc, nil).Router())
	return fixture{srv: srv, gate: gate}
}

func (f fixture) do(method, path, token string, body any, headers ...string) (*http.Response, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req, _ := http.NewRequest(method, f.srv.URL+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (f fixture) signUp(email, company string) string {
	_, body := f.do(http.MethodPost, "/api/signup", "", map[string]string{
		"email": email, "password": "correct horse", "company_name": company,
	})
	token, _ := body["token"].(string)
	return token
}

var scenario = map[string]any{"responses": map[string][]int{
	"Product": {4, 4, 3, 5}, "Market": {3, 3, 3, 3}, "Documentation": {3, 3, 3, 3},
	"Security": {1, 1, 2, 1}, "Certifications": {3, 3, 3, 3},
}}

func TestAccountsFlow(t *testing.T) {
	Convey("Given the API over an in-memory history", t, func() {
		f := newFixture(repository.NewMemoryHistory())
		Reset(f.srv.Close)

		Convey("When calling protected routes without a token", func() {
			resp, body := f.do(http.MethodGet, "/api/questionnaire", "", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
			So(body["code"], ShouldEqual, "not_authenticated")

			resp, body = f.do(http.MethodPost, "/api/assessments/evaluate", "", "{not json")
			So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
			So(body["code"], ShouldEqual, "not_authenticated")
		})

		Convey("When signing up", func() {
			resp, body := f.do(http.MethodPost, "/api/signup", "", map[string]string{
				"email": "ana@acme.io", "password": "correct horse", "company_name": "Acme",
			})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			token := body["token"].(string)

			Convey("Then signing up again conflicts", func() {
				resp, body := f.do(http.MethodPost, "/api/signup", "", map[string]string{
					"email": "ana@acme.io", "password": "correct horse", "company_name": "Acme",
				})
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)
				So(body["code"], ShouldEqual, "account_exists")
			})

			Convey("Then login works and bad passwords do not", func() {
				resp, body := f.do(http.MethodPost, "/api/login", "", map[string]string{"email": "ana@acme.io", "password": "correct horse"})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["token"], ShouldNotBeEmpty)

				resp, body = f.do(http.MethodPost, "/api/login", "", map[string]string{"email": "ana@acme.io", "password": "nope nope"})
				So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
				So(body["code"], ShouldEqual, "invalid_credentials")
			})

			Convey("Then the questionnaire is served", func() {
				resp, body := f.do(http.MethodGet, "/api/questionnaire", token, nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["dimensions"], ShouldHaveLength, 5)
			})

			Convey("Then evaluate scores without saving", func() {
				resp, body := f.do(http.MethodPost, "/api/assessments/evaluate", token, scenario)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["overall"], ShouldEqual, 2.85)
				So(body["overall_label"], ShouldEqual, "Moderate")

				_, hist := f.do(http.MethodGet, "/api/assessments", token, nil)
				So(hist["status"], ShouldEqual, service.StatusEmpty)
			})

			Convey("Then invalid responses are a 400", func() {
				resp, body := f.do(http.MethodPost, "/api/assessments/evaluate", token,
					map[string]any{"responses": map[string][]int{"Product": {6}}})
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "invalid_input")

				resp, _ = f.do(http.MethodPost, "/api/assessments/evaluate", token, "{not json")
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then save and history round trip", func() {
				resp, body := f.do(http.MethodPost, "/api/assessments", token, scenario, api.IdempotencyHeader, "k-1")
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(body["status"], ShouldEqual, "saved")
				recordID := body["record_id"]

				resp, body = f.do(http.MethodPost, "/api/assessments", token, scenario, api.IdempotencyHeader, "k-1")
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["status"], ShouldEqual, "duplicate")
				So(body["record_id"], ShouldEqual, recordID)

				resp, body = f.do(http.MethodGet, "/api/assessments", token, nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["status"], ShouldEqual, service.StatusOK)
				records := body["records"].([]any)
				So(records, ShouldHaveLength, 1)
				So(records[0].(map[string]any)["overall"], ShouldEqual, 2.85)
			})

			Convey("Then another account cannot see the history", func() {
				_, _ = f.do(http.MethodPost, "/api/assessments", token, scenario)
				other := f.signUp("bob@globex.io", "Globex")
				_, body := f.do(http.MethodGet, "/api/assessments", other, nil)
				So(body["status"], ShouldEqual, service.StatusEmpty)
			})

			Convey("Then logout revokes the token", func() {
				resp, _ := f.do(http.MethodPost, "/api/logout", token, nil)
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)

				resp, body := f.do(http.MethodGet, "/api/questionnaire", token, nil)
				So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
				So(body["code"], ShouldEqual, "session_expired")

				resp, _ = f.do(http.MethodPost, "/api/logout", token, nil)
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
			})

			Convey("Then a forged token is refused", func() {
				resp, body := f.do(http.MethodGet, "/api/questionnaire", token+"x", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
				So(body["code"], ShouldEqual, "invalid_credentials")
			})
		})
	})
}

func TestStoreFailures(t *testing.T) {
	Convey("Given the store is down", t, func() {
		f := newFixture(downHistory{}, auth.WithMode(auth.ModeOpen))
		Reset(f.srv.Close)
		_, login := f.do(http.MethodPost, "/api/login", "", map[string]string{})
		token := login["token"].(string)

		Convey("When saving", func() {
			resp, body := f.do(http.MethodPost, "/api/assessments", token, scenario)

			Convey("Then the client gets a 503 that still carries the scores", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
				So(body["code"], ShouldEqual, "store_unavailable")
				eval := body["evaluation"].(map[string]any)
				So(eval["overall"], ShouldEqual, 2.85)
				So(eval["dimensions"], ShouldHaveLength, 5)
			})
		})

		Convey("When reading history", func() {
			resp, body := f.do(http.MethodGet, "/api/assessments", token, nil)
			So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
			So(body["code"], ShouldEqual, "store_unavailable")
		})
	})

	Convey("Given persistence is disabled", t, func() {
		f := newFixture(repository.Disabled{}, auth.WithMode(auth.ModeOpen))
		Reset(f.srv.Close)
		_, login := f.do(http.MethodPost, "/api/login", "", nil)
		token := login["token"].(string)

		resp, body := f.do(http.MethodPost, "/api/assessments", token, scenario)
		So(resp.StatusCode, ShouldEqual, http.StatusOK)
		So(body["status"], ShouldEqual, service.StatusDisabled)
		So(body["saved"], ShouldEqual, false)

		_, hist := f.do(http.MethodGet, "/api/assessments", token, nil)
		So(hist["status"], ShouldEqual, service.StatusDisabled)
	})
}

func TestOverlappingSave(t *testing.T) {
	Convey("Given a save still waiting on the store", t, func() {
		h := heldHistory{entered: make(chan struct{}, 1), outcome: make(chan error, 1)}
		f := newFixture(h, auth.WithMode(auth.ModeOpen))
		Reset(f.srv.Close)
		_, login := f.do(http.MethodPost, "/api/login", "", nil)
		token := login["token"].(string)

		firstStatus := make(chan int, 1)
		go func() {
			resp, _ := f.do(http.MethodPost, "/api/assessments", token, scenario, api.IdempotencyHeader, "k-9")
			firstStatus <- resp.StatusCode
		}()
		<-h.entered

		resp, body := f.do(http.MethodPost, "/api/assessments", token, scenario, api.IdempotencyHeader, "k-9")
		So(resp.StatusCode, ShouldEqual, http.StatusConflict)
		So(body["code"], ShouldEqual, "save_in_progress")

		h.outcome <- repository.ErrUnavailable
		So(<-firstStatus, ShouldEqual, http.StatusServiceUnavailable)
	})
}

func TestOpsEndpoints(t *testing.T) {
	Convey("Given the API", t, func() {
		f := newFixture(repository.NewMemoryHistory())
		Reset(f.srv.Close)

		Convey("Then /stats reports service counters", func() {
			resp, body := f.do(http.MethodGet, "/stats", "", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body, ShouldContainKey, "evaluations")
		})

		Convey("Then /healthz serves Prometheus text", func() {
			resp, err := http.Get(f.srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"), ShouldBeTrue)
		})
	})
}
