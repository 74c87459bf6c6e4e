//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talk-to-your-terms/tosapi/internal/api/handlers"
	"github.com/talk-to-your-terms/tosapi/internal/gateway"
	"github.com/talk-to-your-terms/tosapi/internal/repository"
	"github.com/talk-to-your-terms/tosapi/internal/server"
	"github.com/talk-to-your-terms/tosapi/internal/service"
	"github.com/talk-to-your-terms/tosapi/internal/testutil"
)

// scriptedProvider is an in-process stand-in for the LLM gateway. It
// answers every completion with a canned summary and rejects any model
// other than the baseline.
type scriptedProvider struct{}

func (p *scriptedProvider) Complete(ctx context.Context, req gateway.CompletionRequest) (*gateway.CompletionResult, error) {
	if req.Model != "" && req.Model != p.BaselineModel() {
		return nil, fmt.Errorf("model %s: %w", req.Model, gateway.ErrModelNotFound)
	}
	return &gateway.CompletionResult{
		Text:         "Scripted summary of the submitted document.",
		InputTokens:  100,
		OutputTokens: 40,
	}, nil
}

func (p *scriptedProvider) BaselineModel() string {
	return "claude-3-haiku-20240307"
}

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	BinaryDir    string
	AuthToken    string
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a container-backed
// database and an in-process server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// Register creates an account through the API and stores its session token
func (e *E2ETestEnv) Register(email, password string) {
	status, body, err := e.Post("/api/auth/register", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	if err != nil {
		e.T.Fatalf("failed to register: %v", err)
	}
	if status != http.StatusCreated {
		e.T.Fatalf("register returned %d: %s", status, body)
	}

	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		e.T.Fatalf("failed to parse register response: %v", err)
	}
	e.AuthToken = session.Token
}

// BuildBinaries builds the tos and tosd binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "tos-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "tosd"), "./cmd/tosd")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build tosd: %v\n%s", err, out)
	}

	cmd = exec.Command("go", "build", "-o", filepath.Join(tmpDir, "tos"), "./cmd/tos")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build tos: %v\n%s", err, out)
	}
}

// RunTos runs the tos CLI command against the test server
func (e *E2ETestEnv) RunTos(workDir string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "tos"), args...)
	cmd.Dir = workDir
	env := os.Environ()
	env = append(env, fmt.Sprintf("TOS_API_URL=%s", e.ServerURL))
	if e.AuthToken != "" {
		env = append(env, fmt.Sprintf("TOS_TOKEN=%s", e.AuthToken))
	}
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// Get performs a GET request, returning the status code and raw body
func (e *E2ETestEnv) Get(path, authToken string) (int, []byte, error) {
	return e.doRequest("GET", path, nil, authToken)
}

// Post performs a POST request, returning the status code and raw body
func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (int, []byte, error) {
	return e.doRequest("POST", path, body, authToken)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (int, []byte, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return 0, nil, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, respBody, nil
}

// startServer wires the full stack against the test database with a
// scripted LLM provider and starts an HTTP server
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func()) {
	feedbackRepo := repository.NewFeedbackRepository(pool)
	usageRepo := repository.NewUsageRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	analysisSvc := service.NewAnalysisService(&scriptedProvider{}, usageRepo)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, usageRepo)
	authSvc := service.NewAuthService(userRepo, "e2e-secret")

	cfg := server.RouterConfig{
		TokenVerifier:   authSvc,
		AnalysisHandler: handlers.NewAnalysisHandler(analysisSvc, feedbackSvc),
		FeedbackHandler: handlers.NewFeedbackHandler(feedbackSvc),
		AuthHandler:     handlers.NewAuthHandler(authSvc),
		CORSOrigins:     []string{"*"},
	}

	router := server.NewRouter(cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// longDocument pads out a text so it clears the minimum analyzable length
func longDocument(seed string) string {
	var b strings.Builder
	for b.Len() < 200 {
		b.WriteString(seed)
		b.WriteString(" ")
	}
	return b.String()
}
