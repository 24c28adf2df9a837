// Package worker runs quantization jobs off the caller's goroutine behind
// a one-shot request/response envelope, so a long clustering pass never
// blocks an interactive caller.
//
// Each job owns its buffers and clustering state exclusively for its
// lifetime; the only shared structure is the admission semaphore bounding
// how many jobs run at once. Ownership of a request's buffer transfers
// with the request and comes back with the response.
package worker

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/pixelquant"
)

// Status labels a Response envelope.
type Status string

const (
	// StatusSuccess marks a response carrying a quantized buffer.
	StatusSuccess Status = "success"
	// StatusError marks a response carrying an error message.
	StatusError Status = "error"
)

// ErrTransportFailure indicates the background execution context itself
// failed (panicked job, rejected admission), as opposed to the
// quantization reporting a domain error. The core never retries.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrTransportFailure struct {
	cause error
}

func (e *ErrTransportFailure) Error() string {
	return fmt.Sprintf("worker transport failure: %v", e.cause)
}

func (e *ErrTransportFailure) Unwrap() error { return e.cause }

// Request is a single quantization job. Buffer is a flat RGBA pixel
// buffer; the caller must not read or write it until the response
// arrives. Options are applied over the package defaults; each unset
// option takes its default independently.
type Request struct {
	Buffer  []byte
	Width   int
	Height  int
	Options []pixelquant.Option
}

// Response is the one-shot reply to a Request. On StatusSuccess, Buffer
// holds the quantized pixels, identical in length to the request buffer.
// On StatusError, Message describes the failure and Err holds the typed
// error for callers that want errors.As.
type Response struct {
	Status  Status
	Buffer  []byte
	Message string
	Err     error
}

// Pool bounds the number of quantization jobs running concurrently.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a pool admitting at most maxWorkers jobs at once.
// If maxWorkers <= 0, GOMAXPROCS is used.
func NewPool(maxWorkers int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.GOMAXPROCS(0)
	}
	return &Pool{sem: semaphore.NewWeighted(int64(maxWorkers))}
}

// Process runs one request to completion and returns its response.
// It blocks until a worker slot is free; a canceled context while waiting
// surfaces as a transport failure.
func (p *Pool) Process(ctx context.Context, req Request) Response {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return errResponse(&ErrTransportFailure{cause: err})
	}
	defer p.sem.Release(1)

	return run(ctx, req)
}

// Submit hands the request to a background goroutine and returns a
// buffered channel that will receive exactly one Response. The channel is
// never closed.
func (p *Pool) Submit(ctx context.Context, req Request) <-chan Response {
	ch := make(chan Response, 1)
	go func() {
		ch <- p.Process(ctx, req)
	}()
	return ch
}

func run(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = errResponse(&ErrTransportFailure{cause: fmt.Errorf("panic: %v", r)})
		}
	}()

	res, err := pixelquant.Quantize(ctx, req.Buffer, req.Width, req.Height, req.Options...)
	if err != nil {
		return errResponse(err)
	}

	return Response{Status: StatusSuccess, Buffer: res.Buffer}
}

func errResponse(err error) Response {
	return Response{Status: StatusError, Message: err.Error(), Err: err}
}
