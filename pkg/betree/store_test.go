package betree

import (
	"path/filepath"
	"testing"
)

func TestMemStoreReadWriteDelete(t *testing.T) {
	s := NewMemStore()
	if err := s.Write(1, []byte("hello")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := s.Read(1)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("Read() = %q, want hello", got)
	}

	if err := s.ScheduleDelete(1); err != nil {
		t.Fatalf("ScheduleDelete() error = %v", err)
	}
	if _, err := s.Read(1); err == nil {
		t.Fatal("Read() after delete succeeded, want error")
	}
}

func TestMemStoreReadMissing(t *testing.T) {
	s := NewMemStore()
	if _, err := s.Read(42); err == nil {
		t.Fatal("Read() of missing id succeeded, want error")
	}
}

func TestMemStoreWriteCopiesInput(t *testing.T) {
	s := NewMemStore()
	buf := []byte("hello")
	if err := s.Write(1, buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	buf[0] = 'H'

	got, _ := s.Read(1)
	if string(got) != "hello" {
		t.Fatalf("Write() aliased caller's slice: got %q", got)
	}
}

func TestFileStoreReadWriteDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nodes")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := s.Write(5, []byte("payload")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := s.Read(5)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("Read() = %q, want payload", got)
	}

	if err := s.ScheduleDelete(5); err != nil {
		t.Fatalf("ScheduleDelete() error = %v", err)
	}
	if _, err := s.Read(5); err == nil {
		t.Fatal("Read() after delete succeeded, want error")
	}
}

func TestFileStoreDeleteMissingIsNotAnError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nodes")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := s.ScheduleDelete(99); err != nil {
		t.Fatalf("ScheduleDelete() of missing id error = %v, want nil", err)
	}
}
