package async

import (
	"context"
	"errors"
	"testing"
)

func TestState_Execute_Success(t *testing.T) {
	s := NewState[int]()
	if s.Loading() != Idle {
		t.Errorf("Loading() = %v, want idle", s.Loading())
	}

	got, err := s.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Execute() = %d, want 42", got)
	}
	if s.Loading() != Success {
		t.Errorf("Loading() = %v, want success", s.Loading())
	}
	if s.Data() != 42 {
		t.Errorf("Data() = %d, want 42", s.Data())
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v, want nil", s.Err())
	}
}

func TestState_Execute_Failure(t *testing.T) {
	s := NewState[string]()
	boom := errors.New("boom")

	_, err := s.Execute(context.Background(), func(ctx context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Execute() error = %v, want boom", err)
	}
	if s.Loading() != Failed {
		t.Errorf("Loading() = %v, want error", s.Loading())
	}
	if !errors.Is(s.Err(), boom) {
		t.Errorf("Err() = %v, want boom", s.Err())
	}
}

func TestState_FailureKeepsPriorData(t *testing.T) {
	s := NewState[string]()
	s.Execute(context.Background(), func(ctx context.Context) (string, error) {
		return "first", nil
	})
	s.Execute(context.Background(), func(ctx context.Context) (string, error) {
		return "", errors.New("boom")
	})

	if s.Data() != "first" {
		t.Errorf("Data() = %q, want first (prior content intact on failure)", s.Data())
	}
}

func TestState_Reset(t *testing.T) {
	s := NewState[int]()
	s.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 7, nil
	})

	s.Reset()
	if s.Loading() != Idle {
		t.Errorf("Loading() = %v, want idle", s.Loading())
	}
	if s.Data() != 0 {
		t.Errorf("Data() = %d, want 0", s.Data())
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v, want nil", s.Err())
	}
}
