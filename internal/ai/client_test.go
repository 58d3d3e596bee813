package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

type ipv4Server struct {
	URL string
	srv *http.Server
	ln  net.Listener
}

func newIPv4Server(t *testing.T, handler http.Handler) *ipv4Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: handler}
	s := &ipv4Server{
		URL: "http://" + ln.Addr().String(),
		srv: srv,
		ln:  ln,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("test server serve: %v", err))
		}
	}()
	return s
}

func (s *ipv4Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

func testServerSequence(t *testing.T, statuses []int, headers []http.Header, bodyOK any) *ipv4Server {
	t.Helper()
	var idx int32
	return newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		i := int(atomic.AddInt32(&idx, 1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		st := statuses[i]
		if headers != nil && i < len(headers) && headers[i] != nil {
			for k, vals := range headers[i] {
				for _, v := range vals {
					w.Header().Add(k, v)
				}
			}
		}
		if st >= 200 && st < 300 {
			w.WriteHeader(st)
			_ = json.NewEncoder(w).Encode(bodyOK)
			return
		}
		w.WriteHeader(st)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "rate limited"}})
	}))
}

func userMsg(s string) []Message { return []Message{{Role: "user", Content: s}} }

func TestGenerateRetriesOn429(t *testing.T) {
	okBody := GenerateResponse{Choices: []Choice{{Message: Message{Role: "assistant", Content: "ok"}}}}
	srv := testServerSequence(t, []int{429, 200}, []http.Header{{"Retry-After": {"0"}}, {}}, okBody)
	defer srv.Close()

	c := NewClientWithBaseURL("test", 2*time.Second, 3, 10*time.Millisecond, 100*time.Millisecond, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := c.Generate(ctx, GenerateRequest{Model: "test-model", Messages: userMsg("hi"), MaxTokens: 1})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if resp.Text() != "ok" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRetryAfterHonored(t *testing.T) {
	okBody := GenerateResponse{Choices: []Choice{{Message: Message{Role: "assistant", Content: "ok"}}}}
	srv := testServerSequence(t, []int{429, 200}, []http.Header{{"Retry-After": {"1"}}, {}}, okBody)
	defer srv.Close()

	c := NewClientWithBaseURL("test", 5*time.Second, 3, 0, 0, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	if _, err := c.Generate(ctx, GenerateRequest{Model: "test-model", Messages: userMsg("hi"), MaxTokens: 1}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Fatalf("expected at least ~1s delay due to Retry-After, got %v", elapsed)
	}
}

func TestBackoffStopsOnCancel(t *testing.T) {
	srv := testServerSequence(t, []int{429}, []http.Header{{"Retry-After": {"30"}}}, nil)
	defer srv.Close()

	c := NewClientWithBaseURL("test", 2*time.Second, 3, 0, 0, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Generate(ctx, GenerateRequest{Model: "m", Messages: userMsg("hi")})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %T: %v", err, err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("backoff ignored cancellation: %v", elapsed)
	}
}

func TestGenerateGivesUpAfterMaxAttempts(t *testing.T) {
	srv := testServerSequence(t, []int{503}, nil, nil)
	defer srv.Close()

	c := NewClientWithBaseURL("test", 2*time.Second, 2, 5*time.Millisecond, 10*time.Millisecond, srv.URL)
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", Messages: userMsg("hi")})
	var sErr *ServerError
	if !errors.As(err, &sErr) {
		t.Fatalf("expected ServerError, got %T: %v", err, err)
	}
}

func TestErrorIncludesRequestID(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "req_test_123")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "bad req", "code": "bad_request"}})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test", 2*time.Second, 1, 10*time.Millisecond, 50*time.Millisecond, srv.URL)
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "test-model", Messages: userMsg("hi"), MaxTokens: 1})
	if err == nil {
		t.Fatalf("expected error")
	}
	var brErr *BadRequestError
	if !errors.As(err, &brErr) {
		t.Fatalf("expected BadRequestError, got %T", err)
	}
	if !strings.Contains(err.Error(), "req_test_123") {
		t.Fatalf("expected request id in error, got: %v", err)
	}
}

func TestAuthErrorClassified(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "Incorrect API key"}})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("wrong", 2*time.Second, 3, 0, 0, srv.URL)
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", Messages: userMsg("hi")})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
}

func TestGenerateRequiresKey(t *testing.T) {
	c := NewOpenAIClient("")
	if _, err := c.Generate(context.Background(), GenerateRequest{Model: "m", Messages: userMsg("hi")}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestAssistantAsk(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(GenerateResponse{Choices: []Choice{{Message: Message{Content: "echo:" + req.Messages[1].Content}}}})
	}))
	defer srv.Close()

	a := &Assistant{Runtime: NewClientWithBaseURL("k", time.Second, 1, 0, 0, srv.URL), Model: "m"}
	out, err := a.Ask(context.Background(), "be brief", "ciao")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if out != "echo:ciao" {
		t.Fatalf("unexpected answer %q", out)
	}
}
