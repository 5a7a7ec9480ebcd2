// Package bridge exposes the history service to the presentation layer as
// asynchronous request/response calls, so slow queries never block the
// render loop.
package bridge

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/AlexNguyenz/history-hub/internal/history"
	"github.com/AlexNguyenz/history-hub/pkg/models"
)

// Op identifies one of the four operations reachable from the
// presentation layer.
type Op string

const (
	OpGetAllProjects     Op = "get-all-projects"
	OpGetProjectSessions Op = "get-project-sessions"
	OpParseSession       Op = "parse-session"
	OpGetSessionSummary  Op = "get-session-summary"
)

// ErrClosed is returned for requests submitted after Close.
var ErrClosed = errors.New("bridge closed")

// ErrUnknownOp is returned for requests whose Op is not one of the four
// operations.
var ErrUnknownOp = errors.New("unknown operation")

// Request is one call across the boundary. Path carries the project
// directory for OpGetProjectSessions and the session file for
// OpParseSession and OpGetSessionSummary; OpGetAllProjects ignores it.
type Request struct {
	ID      string
	Op      Op
	Path    string
	Context context.Context
}

// Response carries the result of a request. Exactly one payload field is
// populated on success; Err holds the triggering error otherwise.
type Response struct {
	RequestID string
	Op        Op
	Projects  []models.Project
	Sessions  []models.SessionSummary
	Messages  []models.Message
	Summary   *models.SessionSummary
	Err       error
}

type pending struct {
	req   Request
	reply chan Response
}

// Bridge dispatches requests to the history service on a single
// goroutine, so independent scans never run in parallel.
//
// mu guards the closed flag and orders every send on requests before the
// channel is closed; cancelMu guards the in-flight cancel map separately
// so the dispatch goroutine never contends with a submitter holding mu.
type Bridge struct {
	service   *history.Service
	requests  chan pending
	mu        sync.RWMutex
	closed    bool
	cancelMu  sync.Mutex
	cancels   map[string]context.CancelFunc
	closeOnce sync.Once
}

// New creates a Bridge over service. Call Start before submitting.
func New(service *history.Service) *Bridge {
	return &Bridge{
		service:  service,
		requests: make(chan pending, 10),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Start begins processing requests.
func (b *Bridge) Start() {
	go b.dispatch()
}

// Close shuts the bridge down and cancels all in-flight requests.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.requests)
		b.mu.Unlock()

		b.CancelAll()
	})
}

// Submit enqueues a request and returns the channel its single response
// will arrive on, along with the request ID usable with Cancel.
func (b *Bridge) Submit(ctx context.Context, op Op, path string) (<-chan Response, string) {
	reply := make(chan Response, 1)
	requestID := uuid.New().String()

	p := pending{
		req: Request{
			ID:      requestID,
			Op:      op,
			Path:    path,
			Context: ctx,
		},
		reply: reply,
	}

	// The send happens under the same lock Close takes to flip closed,
	// so a request is either enqueued before the channel closes or
	// rejected here.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		reply <- Response{RequestID: requestID, Op: op, Err: ErrClosed}
		close(reply)
		return reply, requestID
	}

	select {
	case b.requests <- p:
	case <-ctx.Done():
		reply <- Response{RequestID: requestID, Op: op, Err: ctx.Err()}
		close(reply)
	}
	return reply, requestID
}

// Cancel cancels one in-flight request.
func (b *Bridge) Cancel(requestID string) {
	b.cancelMu.Lock()
	cancel, ok := b.cancels[requestID]
	b.cancelMu.Unlock()
	if ok {
		cancel()
	}
}

// CancelAll cancels every in-flight request.
func (b *Bridge) CancelAll() {
	b.cancelMu.Lock()
	cancels := make([]context.CancelFunc, 0, len(b.cancels))
	for _, cancel := range b.cancels {
		cancels = append(cancels, cancel)
	}
	b.cancelMu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (b *Bridge) dispatch() {
	for p := range b.requests {
		b.handle(p)
	}
}

func (b *Bridge) handle(p pending) {
	ctx, cancel := context.WithCancel(p.req.Context)
	b.cancelMu.Lock()
	b.cancels[p.req.ID] = cancel
	b.cancelMu.Unlock()

	defer func() {
		cancel()
		b.cancelMu.Lock()
		delete(b.cancels, p.req.ID)
		b.cancelMu.Unlock()
	}()

	resp := Response{RequestID: p.req.ID, Op: p.req.Op}
	switch p.req.Op {
	case OpGetAllProjects:
		resp.Projects, resp.Err = b.service.ListProjects(ctx)
	case OpGetProjectSessions:
		resp.Sessions, resp.Err = b.service.ListSessions(ctx, p.req.Path)
	case OpParseSession:
		resp.Messages, resp.Err = b.service.ParseSession(ctx, p.req.Path)
	case OpGetSessionSummary:
		var summary models.SessionSummary
		summary, resp.Err = b.service.SessionSummary(ctx, p.req.Path)
		if resp.Err == nil {
			resp.Summary = &summary
		}
	default:
		resp.Err = ErrUnknownOp
	}
	if resp.Err == nil && ctx.Err() != nil {
		resp.Err = ctx.Err()
	}

	p.reply <- resp
	close(p.reply)
}
