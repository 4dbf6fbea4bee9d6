package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	tempmail "github.com/tempmail-go/client-go"
	"github.com/tempmail-go/client-go/internal/config"
)

// fakeService hands out mailboxes and serves a growing message list per token.
type fakeService struct {
	mu       sync.Mutex
	next     int
	messages map[string][]map[string]any
	failList bool
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	t.Helper()
	f := &fakeService{messages: make(map[string][]map[string]any)}
	server := httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeService) serveHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/mailbox":
		f.next++
		token := fmt.Sprintf("t%d", f.next)
		f.messages[token] = nil
		json.NewEncoder(w).Encode(map[string]string{
			"token":   token,
			"mailbox": fmt.Sprintf("user%d@x.com", f.next),
		})
	case "/messages":
		if f.failList {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		msgs := f.messages[token]
		if msgs == nil {
			msgs = []map[string]any{}
		}
		json.NewEncoder(w).Encode(map[string]any{"messages": msgs})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeService) deliver(token, subject string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[token] = append(f.messages[token], map[string]any{
		"from":        "sender@example.com",
		"subject":     subject,
		"bodyPreview": "preview of " + subject,
		"createdAt":   time.Now().UTC().Format(time.RFC3339),
	})
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, "TEMPMAIL_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestNew_SavesSession(t *testing.T) {
	clearEnv(t)
	_, server := newFakeService(t)
	session := filepath.Join(t.TempDir(), "session.json")

	code, out, errOut := runCLI(t, "new", "--base-url", server.URL, "--session-file", session)
	if code != ExitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(out, "user1@x.com") {
		t.Errorf("output = %q, want the address", out)
	}

	data, err := os.ReadFile(session)
	if err != nil {
		t.Fatalf("session file not written: %v", err)
	}
	var exported tempmail.ExportedSession
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatal(err)
	}
	if exported.EmailAddress != "user1@x.com" || exported.Token != "t1" {
		t.Errorf("exported = %+v", exported)
	}
}

func TestNew_Quiet(t *testing.T) {
	clearEnv(t)
	_, server := newFakeService(t)
	session := filepath.Join(t.TempDir(), "session.json")

	code, out, _ := runCLI(t, "new", "-q", "--base-url", server.URL, "--session-file", session)
	if code != ExitOK {
		t.Fatalf("exit code = %d", code)
	}
	if out != "user1@x.com\n" {
		t.Errorf("output = %q, want only the address", out)
	}
}

func TestList(t *testing.T) {
	clearEnv(t)
	svc, server := newFakeService(t)
	session := filepath.Join(t.TempDir(), "session.json")

	if code, _, errOut := runCLI(t, "new", "--base-url", server.URL, "--session-file", session); code != ExitOK {
		t.Fatalf("new failed: %s", errOut)
	}
	svc.deliver("t1", "Welcome")
	svc.deliver("t1", "Verify your account")

	code, out, errOut := runCLI(t, "list", "--base-url", server.URL, "--session-file", session)
	if code != ExitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(out, "Welcome") || !strings.Contains(out, "Verify your account") {
		t.Errorf("output = %q, want both subjects", out)
	}
}

func TestList_NoSession(t *testing.T) {
	clearEnv(t)
	_, server := newFakeService(t)
	session := filepath.Join(t.TempDir(), "missing.json")

	code, _, errOut := runCLI(t, "list", "--base-url", server.URL, "--session-file", session)
	if code != ExitError {
		t.Errorf("exit code = %d, want %d", code, ExitError)
	}
	if !strings.Contains(errOut, "tempmail new") {
		t.Errorf("stderr = %q, want a hint to run 'tempmail new'", errOut)
	}
}

func TestWait_ReceivesMessage(t *testing.T) {
	clearEnv(t)
	svc, server := newFakeService(t)
	session := filepath.Join(t.TempDir(), "session.json")

	if code, _, errOut := runCLI(t, "new", "--base-url", server.URL, "--session-file", session); code != ExitOK {
		t.Fatalf("new failed: %s", errOut)
	}
	svc.deliver("t1", "Old news")

	go func() {
		time.Sleep(100 * time.Millisecond)
		svc.deliver("t1", "Your code")
	}()

	code, out, errOut := runCLI(t, "wait", "--base-url", server.URL, "--session-file", session,
		"--timeout", "5s", "--interval", "20ms")
	if code != ExitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(out, "Your code") {
		t.Errorf("output = %q, want the new message", out)
	}
	if strings.Contains(out, "Old news") {
		t.Errorf("output = %q, should not report messages present before the wait", out)
	}
}

func TestWait_TimeoutExitCode(t *testing.T) {
	clearEnv(t)
	_, server := newFakeService(t)
	session := filepath.Join(t.TempDir(), "session.json")

	if code, _, errOut := runCLI(t, "new", "--base-url", server.URL, "--session-file", session); code != ExitOK {
		t.Fatalf("new failed: %s", errOut)
	}

	code, out, _ := runCLI(t, "wait", "--base-url", server.URL, "--session-file", session,
		"--timeout", "100ms", "--interval", "20ms")
	if code != ExitTimeout {
		t.Errorf("exit code = %d, want %d", code, ExitTimeout)
	}
	if !strings.Contains(out, "No new messages") {
		t.Errorf("output = %q, want a timeout notice", out)
	}
}

func TestWait_MultipleSessions(t *testing.T) {
	clearEnv(t)
	svc, server := newFakeService(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")

	for _, path := range []string{first, second} {
		if code, _, errOut := runCLI(t, "new", "--base-url", server.URL, "--session-file", path); code != ExitOK {
			t.Fatalf("new failed: %s", errOut)
		}
	}

	go func() {
		time.Sleep(100 * time.Millisecond)
		svc.deliver("t1", "For first")
		svc.deliver("t2", "For second")
	}()

	code, out, errOut := runCLI(t, "wait", "--base-url", server.URL,
		"--session", first, "--session", second, "--timeout", "5s", "--interval", "20ms")
	if code != ExitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(out, "For first") || !strings.Contains(out, "For second") {
		t.Errorf("output = %q, want both messages", out)
	}
}

func TestWait_TransportFailure(t *testing.T) {
	clearEnv(t)
	svc, server := newFakeService(t)
	session := filepath.Join(t.TempDir(), "session.json")

	if code, _, errOut := runCLI(t, "new", "--base-url", server.URL, "--session-file", session); code != ExitOK {
		t.Fatalf("new failed: %s", errOut)
	}
	svc.mu.Lock()
	svc.failList = true
	svc.mu.Unlock()

	code, _, errOut := runCLI(t, "wait", "--base-url", server.URL, "--session-file", session, "--timeout", "5s")
	if code != ExitError {
		t.Errorf("exit code = %d, want %d", code, ExitError)
	}
	if !strings.Contains(errOut, "502") {
		t.Errorf("stderr = %q, want the status code", errOut)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, server := newFakeService(t)

	a := &app{
		logger: zap.NewNop(),
		cfg: &config.Config{
			BaseURL:        server.URL,
			Timeout:        time.Second,
			RequestTimeout: time.Second,
		},
	}
	if err := a.serveMetrics("127.0.0.1:0"); err != nil {
		t.Fatalf("serveMetrics() error = %v", err)
	}
	defer a.teardown(nil, nil)

	client, err := a.newClient()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.GenerateEmail(context.Background()); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get("http://" + a.metricsServer.Addr + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{"tempmail_client_requests_total", "tempmail_client_mailboxes_created_total", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("/metrics missing %s", want)
		}
	}

	live, err := http.Get("http://" + a.metricsServer.Addr + "/live")
	if err != nil {
		t.Fatalf("GET /live error = %v", err)
	}
	live.Body.Close()
	if live.StatusCode != http.StatusOK {
		t.Errorf("/live status = %d, want 200", live.StatusCode)
	}
}

func TestVersion(t *testing.T) {
	clearEnv(t)
	code, out, _ := runCLI(t, "version")
	if code != ExitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "tempmail version "+Version) {
		t.Errorf("output = %q", out)
	}
}

func TestSetup_LogFileFallback(t *testing.T) {
	clearEnv(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEMPMAIL_LOG_FILE", filepath.Join(blocker, "logs", "tempmail.log"))

	code, out, errOut := runCLI(t, "version")
	if code != ExitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(out, "tempmail version "+Version) {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(errOut, "log file unavailable") {
		t.Errorf("stderr = %q, want a fallback warning", errOut)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"timeout", &tempmail.WaitTimeoutError{Timeout: time.Second}, ExitTimeout},
		{"reported timeout", &errReported{err: &tempmail.WaitTimeoutError{}}, ExitTimeout},
		{"other", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
