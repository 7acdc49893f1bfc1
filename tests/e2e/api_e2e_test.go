package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sadhanacard/internal/db"
	"github.com/sadhanacard/internal/record"
	"github.com/sadhanacard/internal/router"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type e2eSuite struct {
	handler   http.Handler
	public    httpClient
	owner     httpClient
	baseURL   string
	ownerPass string
	user      db.User
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler, withJar bool) *localClient {
	var jar http.CookieJar
	if withJar {
		if j, err := cookiejar.New(nil); err == nil {
			jar = j
		}
	}
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

func TestE2E_AllInterfaces(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("unauthenticated access", suite.testUnauthenticated)
	suite.login(t)
	t.Run("record lifecycle", suite.testRecordLifecycle)
	t.Run("report and share", suite.testReportAndShare)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.CardEntry{}, &db.ShareSnapshot{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	db.DB = gdb

	hashed, err := bcrypt.GenerateFromPassword([]byte("e2e-secret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := db.User{Username: "owner", Password: string(hashed)}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	engine := router.SetupRouter("test-session-secret", "../../web/template/*.html", "http://example.test")

	return &e2eSuite{
		handler:   engine,
		public:    newLocalClient(engine, false),
		owner:     newLocalClient(engine, true),
		baseURL:   "http://example.test",
		ownerPass: "e2e-secret",
		user:      user,
	}
}

func (s *e2eSuite) login(t *testing.T) {
	t.Helper()
	form := url.Values{
		"username": {s.user.Username},
		"password": {s.ownerPass},
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/admin/login", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("failed to create login request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.owner.Do(req)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login failed, status %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testUnauthenticated(t *testing.T) {
	t.Helper()

	resp := s.mustRequest(t, s.public, http.MethodGet, "/ping", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ping expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "pong") {
		t.Fatalf("ping: unexpected body %q", body)
	}

	guarded := []string{
		"/admin/card",
		"/admin/api/records/2024-05-01",
		"/admin/api/records/2024-05-01/report",
	}
	for _, path := range guarded {
		resp := s.mustRequest(t, s.public, http.MethodGet, path, nil, nil)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("%s expected 302, got %d", path, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/admin/login" {
			t.Fatalf("%s: unexpected redirect location %q", path, loc)
		}
	}
}

func (s *e2eSuite) testRecordLifecycle(t *testing.T) {
	t.Helper()
	const date = "2024-05-01"

	resp := s.mustRequest(t, s.owner, http.MethodGet, "/admin/api/records/"+date, nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get record expected 200, got %d", resp.StatusCode)
	}
	var initial struct {
		Record record.DailyRecord `json:"record"`
	}
	decodeJSON(t, resp, &initial)
	if initial.Record.Reporting.Status != record.StatusOnTime {
		t.Fatalf("expected default reporting status, got %q", initial.Record.Reporting.Status)
	}

	full := record.Default()
	full.Body.SleepTime = "21:15"
	full.Body.WakeUpTime = "04:15"
	full.Soul.JapaRounds = "16"
	full.Soul.JapaCompletionTime = "09:00"
	resp = s.mustRequestJSON(t, s.owner, http.MethodPut, "/admin/api/records/"+date, full)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace record expected 200, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}

	patch := map[string]any{"soul": map[string]any{"readingHours": "0.75"}}
	resp = s.mustRequestJSON(t, s.owner, http.MethodPatch, "/admin/api/records/"+date, patch)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch record expected 200, got %d", resp.StatusCode)
	}
	var patched struct {
		Record record.DailyRecord `json:"record"`
	}
	decodeJSON(t, resp, &patched)
	if patched.Record.Soul.ReadingHours != "0.75" {
		t.Fatalf("expected patched reading hours, got %q", patched.Record.Soul.ReadingHours)
	}
	if patched.Record.Body.SleepTime != "21:15" {
		t.Fatalf("expected earlier edit preserved, got %q", patched.Record.Body.SleepTime)
	}

	resp = s.mustRequest(t, s.owner, http.MethodPost, "/admin/api/records/"+date+"/save", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save record expected 200, got %d", resp.StatusCode)
	}

	var entry db.CardEntry
	if err := db.DB.Where("key = ?", record.Key(date)).First(&entry).Error; err != nil {
		t.Fatalf("expected persisted entry: %v", err)
	}

	resp = s.mustRequest(t, s.owner, http.MethodGet, "/admin/api/records/"+date+"/status", nil, nil)
	defer resp.Body.Close()
	var status struct {
		Dirty     bool   `json:"dirty"`
		LastError string `json:"last_error"`
	}
	decodeJSON(t, resp, &status)
	if status.Dirty || status.LastError != "" {
		t.Fatalf("expected clean status after save, got %+v", status)
	}

	resp = s.mustRequest(t, s.owner, http.MethodGet, "/admin/api/records/not-a-date", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid date expected 400, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.owner, http.MethodGet, "/admin/card?date="+date, nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("card page expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Sadhana Card") {
		t.Fatalf("card page missing title, body=%s", body)
	}
}

func (s *e2eSuite) testReportAndShare(t *testing.T) {
	t.Helper()
	const date = "2024-05-01"

	resp := s.mustRequest(t, s.owner, http.MethodGet, "/admin/api/records/"+date+"/report", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report expected 200, got %d", resp.StatusCode)
	}
	var report struct {
		Text        string `json:"text"`
		WhatsAppURL string `json:"whatsapp_url"`
	}
	decodeJSON(t, resp, &report)
	if !strings.Contains(report.Text, "Japa: 16 rounds") {
		t.Fatalf("report missing japa line: %q", report.Text)
	}
	if !strings.HasPrefix(report.WhatsAppURL, "https://wa.me/?text=") {
		t.Fatalf("unexpected deep link %q", report.WhatsAppURL)
	}

	resp = s.mustRequest(t, s.owner, http.MethodPost, "/admin/api/records/"+date+"/share", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create share expected 200, got %d", resp.StatusCode)
	}
	var share struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}
	decodeJSON(t, resp, &share)
	if share.Token == "" {
		t.Fatal("expected share token")
	}
	if share.URL != "http://example.test/s/"+share.Token {
		t.Fatalf("unexpected share url %q", share.URL)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/s/"+share.Token, nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("share page expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Sadhana Report") {
		t.Fatalf("share page missing report, body=%s", body)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/s/does-not-exist", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing share expected 404, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) mustRequest(t *testing.T, client httpClient, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request %s %s: %v", method, path, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (s *e2eSuite) mustRequestJSON(t *testing.T, client httpClient, method, path string, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	return s.mustRequest(t, client, method, path, bytes.NewReader(data), headers)
}

func decodeJSON(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	body := readBody(t, resp)
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}
