package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scholarlytrust/scholarlytrust/internal/model"
)

type mockResult struct {
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

type mockJob struct {
	shouldErr bool
	executed  *int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{}
}

func TestNewPool(t *testing.T) {
	ctx := context.Background()
	if p := NewPool(ctx, 5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool(ctx, 0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool(ctx, -1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	count := 10
	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{executed: &executed})
	}

	results := pool.Wait()
	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

type trackedJob struct {
	start    func()
	end      func()
	duration time.Duration
}

func (j *trackedJob) Execute(ctx context.Context) Result {
	if j.start != nil {
		j.start()
	}
	time.Sleep(j.duration)
	if j.end != nil {
		j.end()
	}
	return &mockResult{}
}

// Submissions well past the channel buffers must not wedge: the drainer has
// to keep emptying results while jobs are still being queued.
func TestPool_ManyMoreJobsThanBuffers(t *testing.T) {
	workers := 2
	totalJobs := 50

	done := make(chan []Result, 1)
	var executed int32
	go func() {
		pool := NewPool(context.Background(), workers)
		pool.Start()
		for i := 0; i < totalJobs; i++ {
			pool.Submit(&mockJob{executed: &executed})
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != totalJobs {
			t.Errorf("expected %d results, got %d", totalJobs, len(results))
		}
		if atomic.LoadInt32(&executed) != int32(totalJobs) {
			t.Errorf("expected %d executed jobs, got %d", totalJobs, executed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pool blocked submitting more jobs than the queue and results buffers hold")
	}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 8
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var current int32
	var maxConcurrent int32
	var mu sync.Mutex

	totalJobs := 40
	for i := 0; i < totalJobs; i++ {
		pool.Submit(&trackedJob{
			start: func() {
				curr := atomic.AddInt32(&current, 1)
				mu.Lock()
				if curr > maxConcurrent {
					maxConcurrent = curr
				}
				mu.Unlock()
			},
			end: func() {
				atomic.AddInt32(&current, -1)
			},
			duration: 10 * time.Millisecond,
		})
	}

	results := pool.Wait()
	if len(results) != totalJobs {
		t.Errorf("expected %d results, got %d", totalJobs, len(results))
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()
	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&mockJob{shouldErr: true})
	pool.Submit(&mockJob{shouldErr: false})

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	failed := 0
	for _, res := range results {
		if res.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failed job, got %d", failed)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		pool.Submit(&mockJob{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestBatchProcessor_Process(t *testing.T) {
	eval := EvaluatorFunc(func(ctx context.Context, id string) (*model.ScoreReport, error) {
		if id == "bad" {
			return nil, errors.New("lookup failed")
		}
		return &model.ScoreReport{Identifier: id, Score: 100}, nil
	})

	bp := NewBatchProcessor(eval, 3)
	results := bp.Process(context.Background(), []string{"1234-5678", "bad", "2049-3630"})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	failed := 0
	for _, r := range results {
		if r.GetError() != nil {
			failed++
			continue
		}
		if r.Report == nil || r.Report.Identifier != r.Identifier {
			t.Errorf("result for %q carries wrong report", r.Identifier)
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failure, got %d", failed)
	}
}

func TestBatchProcessor_LargeBatch(t *testing.T) {
	eval := EvaluatorFunc(func(ctx context.Context, id string) (*model.ScoreReport, error) {
		return &model.ScoreReport{Identifier: id, Score: 100}, nil
	})

	identifiers := make([]string, 30)
	for i := range identifiers {
		identifiers[i] = fmt.Sprintf("1234-%04d", i)
	}

	done := make(chan []*EvaluateResult, 1)
	go func() {
		done <- NewBatchProcessor(eval, 2).Process(context.Background(), identifiers)
	}()

	select {
	case results := <-done:
		if len(results) != len(identifiers) {
			t.Errorf("expected %d results, got %d", len(identifiers), len(results))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch blocked with more identifiers than the pool buffers hold")
	}
}

type batchCtxKey struct{}

func TestBatchProcessor_PropagatesContext(t *testing.T) {
	eval := EvaluatorFunc(func(ctx context.Context, id string) (*model.ScoreReport, error) {
		if v, _ := ctx.Value(batchCtxKey{}).(string); v != "set" {
			return nil, errors.New("caller context not propagated")
		}
		return &model.ScoreReport{Identifier: id}, nil
	})

	ctx := context.WithValue(context.Background(), batchCtxKey{}, "set")
	results := NewBatchProcessor(eval, 2).Process(ctx, []string{"1234-5678"})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if err := results[0].GetError(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReadIdentifiersFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identifiers.txt")
	content := "# trusted set\n1234-5678\n\n2049-3630\n1234-5678\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ids, err := ReadIdentifiersFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"1234-5678", "2049-3630"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d identifiers, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("identifiers[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestReadIdentifiersFromFile_Missing(t *testing.T) {
	if _, err := ReadIdentifiersFromFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
