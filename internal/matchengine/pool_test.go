package matchengine

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

func TestPool_SubmitAndAwait(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	handle := pool.Submit(func() (matchmodel.CompanyMatch, bool) {
		return matchmodel.CompanyMatch{Score: 0.9}, true
	})

	match, matched, err := handle.Await(context.Background())
	if err != nil {
		t.Fatalf("Await returned error: %v", err)
	}
	if !matched {
		t.Fatal("expected matched to be true")
	}
	if match.Score != 0.9 {
		t.Errorf("Score = %v, want 0.9", match.Score)
	}
	if err := pool.Stop(); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
}

func TestPool_RecoversTaskPanic(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	handle := pool.Submit(func() (matchmodel.CompanyMatch, bool) {
		panic("boom")
	})

	_, _, err := handle.Await(context.Background())
	if err == nil {
		t.Fatal("expected an error from a panicking task")
	}
	if err := pool.Stop(); err != nil {
		t.Fatalf("Stop returned error after a recovered panic: %v", err)
	}
}

func TestPool_OnePanicDoesNotAffectOtherTasks(t *testing.T) {
	pool := NewPool(context.Background(), 2)

	panicHandle := pool.Submit(func() (matchmodel.CompanyMatch, bool) {
		panic("boom")
	})
	okHandle := pool.Submit(func() (matchmodel.CompanyMatch, bool) {
		return matchmodel.CompanyMatch{Score: 1}, true
	})

	if _, _, err := panicHandle.Await(context.Background()); err == nil {
		t.Fatal("expected an error from the panicking task")
	}
	match, matched, err := okHandle.Await(context.Background())
	if err != nil {
		t.Fatalf("unrelated task returned error: %v", err)
	}
	if !matched || match.Score != 1 {
		t.Errorf("unrelated task result corrupted: matched=%v score=%v", matched, match.Score)
	}
}

func TestHandle_AwaitTimesOut(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	release := make(chan struct{})
	handle := pool.Submit(func() (matchmodel.CompanyMatch, bool) {
		<-release
		return matchmodel.CompanyMatch{}, true
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, _, err := handle.Await(ctx)
	if !eris.Is(err, ErrTimedOut) {
		t.Errorf("Await error = %v, want ErrTimedOut", err)
	}

	close(release)
	if err := pool.Stop(); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
}
