package bridge

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/AlexNguyenz/history-hub/internal/history"
	"github.com/AlexNguyenz/history-hub/internal/parser"
	"github.com/AlexNguyenz/history-hub/pkg/models"
)

// stubEngine serves canned results; when notReady it behaves like an
// engine whose initialization has not finished.
type stubEngine struct {
	notReady bool
	summary  models.SessionSummary
}

func (s *stubEngine) SessionSummary(ctx context.Context, filePath string) (models.SessionSummary, error) {
	if s.notReady {
		return models.SessionSummary{}, parser.ErrNotInitialized
	}
	sum := s.summary
	sum.FilePath = filePath
	return sum, nil
}

func (s *stubEngine) ParseSession(ctx context.Context, filePath string) ([]models.Message, error) {
	if s.notReady {
		return nil, parser.ErrNotInitialized
	}
	return []models.Message{{MessageID: "m1", Role: "user", Content: "hi"}}, nil
}

func newFixture(t *testing.T, engine parser.Engine) (*Bridge, string, string) {
	t.Helper()
	root := t.TempDir()
	projectDir := filepath.Join(root, "-Users-alice-proj")
	if err := os.Mkdir(projectDir, 0o755); err != nil {
		t.Fatal(err)
	}
	sessionPath := filepath.Join(projectDir, "s1.jsonl")
	if err := os.WriteFile(sessionPath, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	service := history.NewService(root, engine)
	service.SetLogger(log.New(io.Discard, "", 0))

	b := New(service)
	b.Start()
	t.Cleanup(b.Close)
	return b, projectDir, sessionPath
}

func await(t *testing.T, replies <-chan Response) Response {
	t.Helper()
	select {
	case resp := <-replies:
		return resp
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for response")
		return Response{}
	}
}

func TestBridgeOperations(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	engine := &stubEngine{summary: models.SessionSummary{
		SessionID:     "s1",
		MessageCount:  4,
		LastTimestamp: &ts,
		CWD:           "/Users/alice/proj",
	}}
	b, projectDir, sessionPath := newFixture(t, engine)
	ctx := context.Background()

	replies, _ := b.Submit(ctx, OpGetAllProjects, "")
	resp := await(t, replies)
	if resp.Err != nil {
		t.Fatalf("get-all-projects: %v", resp.Err)
	}
	if len(resp.Projects) != 1 || resp.Projects[0].Name != "proj" {
		t.Errorf("unexpected projects: %+v", resp.Projects)
	}

	replies, _ = b.Submit(ctx, OpGetProjectSessions, projectDir)
	resp = await(t, replies)
	if resp.Err != nil {
		t.Fatalf("get-project-sessions: %v", resp.Err)
	}
	if len(resp.Sessions) != 1 || resp.Sessions[0].SessionID != "s1" {
		t.Errorf("unexpected sessions: %+v", resp.Sessions)
	}

	replies, _ = b.Submit(ctx, OpParseSession, sessionPath)
	resp = await(t, replies)
	if resp.Err != nil {
		t.Fatalf("parse-session: %v", resp.Err)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].Content != "hi" {
		t.Errorf("unexpected messages: %+v", resp.Messages)
	}

	replies, _ = b.Submit(ctx, OpGetSessionSummary, sessionPath)
	resp = await(t, replies)
	if resp.Err != nil {
		t.Fatalf("get-session-summary: %v", resp.Err)
	}
	if resp.Summary == nil || resp.Summary.MessageCount != 4 {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}
}

// Every operation submitted before the parser engine has initialized must
// come back rejected with the distinct error, never panic.
func TestBridgeRejectsBeforeParserInit(t *testing.T) {
	b, projectDir, sessionPath := newFixture(t, &stubEngine{notReady: true})
	ctx := context.Background()

	calls := []struct {
		op   Op
		path string
	}{
		{OpGetAllProjects, ""},
		{OpGetProjectSessions, projectDir},
		{OpParseSession, sessionPath},
		{OpGetSessionSummary, sessionPath},
	}
	for _, call := range calls {
		replies, _ := b.Submit(ctx, call.op, call.path)
		resp := await(t, replies)
		if !errors.Is(resp.Err, parser.ErrNotInitialized) {
			t.Errorf("%s: got %v, want ErrNotInitialized", call.op, resp.Err)
		}
	}
}

func TestBridgeUnknownOp(t *testing.T) {
	b, _, _ := newFixture(t, &stubEngine{})
	replies, _ := b.Submit(context.Background(), Op("frobnicate"), "")
	resp := await(t, replies)
	if !errors.Is(resp.Err, ErrUnknownOp) {
		t.Errorf("got %v, want ErrUnknownOp", resp.Err)
	}
}

func TestBridgeSubmitAfterClose(t *testing.T) {
	b, _, _ := newFixture(t, &stubEngine{})
	b.Close()

	replies, _ := b.Submit(context.Background(), OpGetAllProjects, "")
	resp := await(t, replies)
	if !errors.Is(resp.Err, ErrClosed) {
		t.Errorf("got %v, want ErrClosed", resp.Err)
	}
}

func TestBridgeCloseDuringSubmits(t *testing.T) {
	b, _, _ := newFixture(t, &stubEngine{})
	ctx := context.Background()

	// Every submit racing Close must resolve: either a normal response
	// (enqueued before the shutdown) or ErrClosed, never a hang or a
	// send on the closed queue.
	errTimeout := errors.New("timed out waiting for response")
	const n = 50
	results := make(chan Response, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			replies, _ := b.Submit(ctx, OpGetAllProjects, "")
			select {
			case resp := <-replies:
				results <- resp
			case <-time.After(5 * time.Second):
				results <- Response{Err: errTimeout}
			}
		}()
	}
	b.Close()
	wg.Wait()
	close(results)

	for resp := range results {
		if resp.Err != nil && !errors.Is(resp.Err, ErrClosed) {
			t.Errorf("got %v, want nil or ErrClosed", resp.Err)
		}
	}
}

func TestBridgeRequestIDsUnique(t *testing.T) {
	b, _, _ := newFixture(t, &stubEngine{})
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		replies, id := b.Submit(ctx, OpGetAllProjects, "")
		if seen[id] {
			t.Fatalf("duplicate request ID %s", id)
		}
		seen[id] = true
		await(t, replies)
	}
}
