package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gobeaver/specscribe"
)

func TestNew(t *testing.T) {
	t.Run("creates adapter with default config", func(t *testing.T) {
		a := New()
		if a == nil {
			t.Fatal("expected adapter to be created")
		}
		if a.maxSize != 0 {
			t.Errorf("expected maxSize=0, got %d", a.maxSize)
		}
	})

	t.Run("creates adapter with max size", func(t *testing.T) {
		a := New(Config{MaxSize: 1024})
		if a.maxSize != 1024 {
			t.Errorf("expected maxSize=1024, got %d", a.maxSize)
		}
	})
}

func TestWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("writes file successfully", func(t *testing.T) {
		a := New()
		content := "hello world"

		if err := a.Write(ctx, "cv/1/cv.txt", strings.NewReader(content)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		exists, err := a.FileExists(ctx, "cv/1/cv.txt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !exists {
			t.Error("expected file to exist")
		}

		if a.Size() != int64(len(content)) {
			t.Errorf("expected size=%d, got %d", len(content), a.Size())
		}
	})

	t.Run("fails on path traversal", func(t *testing.T) {
		a := New()

		err := a.Write(ctx, "../etc/passwd", strings.NewReader("malicious"))
		if err == nil {
			t.Fatal("expected error for path traversal")
		}
		if !specscribe.IsPermission(err) {
			t.Errorf("expected permission error, got: %v", err)
		}
	})

	t.Run("respects max size limit", func(t *testing.T) {
		a := New(Config{MaxSize: 10})

		err := a.Write(ctx, "large.txt", strings.NewReader("this is too large"))
		if !errors.Is(err, specscribe.ErrNoSpace) {
			t.Fatalf("expected ErrNoSpace, got %v", err)
		}
		if a.FileCount() != 0 {
			t.Errorf("expected no files, got %d", a.FileCount())
		}
	})

	t.Run("refuses to overwrite without option", func(t *testing.T) {
		a := New()
		_ = a.Write(ctx, "a.txt", strings.NewReader("one"))

		err := a.Write(ctx, "a.txt", strings.NewReader("two"))
		if !specscribe.IsExist(err) {
			t.Fatalf("expected exist error, got %v", err)
		}

		if err := a.Write(ctx, "a.txt", strings.NewReader("three"), specscribe.WithOverwrite(true)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, _ := a.ReadAll(ctx, "a.txt")
		if string(data) != "three" {
			t.Errorf("expected overwritten content, got %q", data)
		}
		if a.Size() != 5 {
			t.Errorf("expected size=5 after overwrite, got %d", a.Size())
		}
	})

	t.Run("stores content type and metadata", func(t *testing.T) {
		a := New()
		err := a.Write(ctx, "cv/1/cv.pdf", strings.NewReader("%PDF"),
			specscribe.WithContentType("application/pdf"),
			specscribe.WithMetadata(map[string]string{"original_name": "My CV.pdf"}),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := a.Stat(ctx, "cv/1/cv.pdf")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.ContentType != "application/pdf" {
			t.Errorf("expected content type application/pdf, got %q", info.ContentType)
		}
		if info.Metadata["original_name"] != "My CV.pdf" {
			t.Errorf("expected metadata to be kept, got %v", info.Metadata)
		}
	})

	t.Run("respects cancelled context", func(t *testing.T) {
		a := New()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if err := a.Write(cctx, "a.txt", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestRead(t *testing.T) {
	ctx := context.Background()
	a := New()
	_ = a.Write(ctx, "job-spec/1/spec.docx", strings.NewReader("content"))

	t.Run("reads existing file", func(t *testing.T) {
		data, err := a.ReadAll(ctx, "/job-spec/1/spec.docx")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "content" {
			t.Errorf("expected %q, got %q", "content", data)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := a.Read(ctx, "job-spec/2/spec.docx")
		if !specscribe.IsNotExist(err) {
			t.Errorf("expected not exist error, got %v", err)
		}
	})
}

func TestStat(t *testing.T) {
	ctx := context.Background()
	a := New()
	_ = a.Write(ctx, "cv/1/cv.txt", strings.NewReader("abc"))

	t.Run("file", func(t *testing.T) {
		info, err := a.Stat(ctx, "cv/1/cv.txt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Name != "cv.txt" || info.Size != 3 || info.IsDir {
			t.Errorf("unexpected info: %+v", info)
		}
	})

	t.Run("implied directory", func(t *testing.T) {
		info, err := a.Stat(ctx, "cv/1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !info.IsDir {
			t.Error("expected directory")
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := a.Stat(ctx, "cv/2"); !specscribe.IsNotExist(err) {
			t.Errorf("expected not exist error, got %v", err)
		}
	})
}

func TestListContents(t *testing.T) {
	ctx := context.Background()
	a := New()
	_ = a.Write(ctx, "cv/1/a.pdf", strings.NewReader("a"))
	_ = a.Write(ctx, "cv/2/b.pdf", strings.NewReader("bb"))
	_ = a.Write(ctx, "job-spec/3/c.pdf", strings.NewReader("ccc"))

	t.Run("non-recursive returns implied directories", func(t *testing.T) {
		entries, err := a.ListContents(ctx, "cv", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		for _, e := range entries {
			if !e.IsDir {
				t.Errorf("expected %s to be a directory", e.Path)
			}
		}
		if entries[0].Path != "cv/1" || entries[1].Path != "cv/2" {
			t.Errorf("unexpected order: %s, %s", entries[0].Path, entries[1].Path)
		}
	})

	t.Run("recursive returns files", func(t *testing.T) {
		entries, err := a.ListContents(ctx, "cv", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Path != "cv/1/a.pdf" || entries[1].Size != 2 {
			t.Errorf("unexpected entries: %+v", entries)
		}
	})

	t.Run("root lists top-level directories", func(t *testing.T) {
		entries, err := a.ListContents(ctx, "", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("expected 2 entries, got %d", len(entries))
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := a.ListContents(ctx, "interview-doc", false); !specscribe.IsNotExist(err) {
			t.Errorf("expected not exist error, got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	a := New()
	_ = a.Write(ctx, "a.txt", strings.NewReader("abc"))

	if err := a.Delete(ctx, "a.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Size() != 0 {
		t.Errorf("expected size=0, got %d", a.Size())
	}
	if err := a.Delete(ctx, "a.txt"); !specscribe.IsNotExist(err) {
		t.Errorf("expected not exist error, got %v", err)
	}
}

func TestDeleteDir(t *testing.T) {
	ctx := context.Background()
	a := New()
	_ = a.Write(ctx, "cv/1/a.pdf", strings.NewReader("a"))
	_ = a.Write(ctx, "cv/1/b.pdf", strings.NewReader("b"))
	_ = a.Write(ctx, "cv/10/c.pdf", strings.NewReader("c"))

	if err := a.DeleteDir(ctx, "cv/1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.FileCount() != 1 {
		t.Errorf("expected sibling with shared prefix to survive, got %d files", a.FileCount())
	}
	if err := a.DeleteDir(ctx, "cv/1"); !specscribe.IsNotExist(err) {
		t.Errorf("expected not exist error, got %v", err)
	}
	if err := a.DeleteDir(ctx, ""); !specscribe.IsPermission(err) {
		t.Errorf("expected root deletion to be refused, got %v", err)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	a := New(Config{MaxSize: 6})
	_ = a.Write(ctx, "cv/1/a.pdf", strings.NewReader("abc"))
	_ = a.Write(ctx, "cv/2/b.pdf", strings.NewReader("def"))

	a.Clear()

	if a.FileCount() != 0 || a.Size() != 0 {
		t.Errorf("expected empty adapter, got %d files of %d bytes", a.FileCount(), a.Size())
	}
	if err := a.Write(ctx, "cv/3/c.pdf", strings.NewReader("ghijkl")); err != nil {
		t.Errorf("expected capacity to be released, got %v", err)
	}
}

func TestChecksum(t *testing.T) {
	ctx := context.Background()
	a := New()
	_ = a.Write(ctx, "a.txt", strings.NewReader("hello"))

	got, err := a.Checksum(ctx, "a.txt", specscribe.ChecksumSHA256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	if _, err := a.Checksum(ctx, "missing.txt", specscribe.ChecksumSHA256); !specscribe.IsNotExist(err) {
		t.Errorf("expected not exist error, got %v", err)
	}
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("signals on matching write", func(t *testing.T) {
		a := New()
		token, err := a.Watch(ctx, "cv/**")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		fired := make(chan struct{})
		token.RegisterChangeCallback(func() { close(fired) })

		_ = a.Write(ctx, "job-spec/1/a.pdf", strings.NewReader("x"))
		_ = a.Write(ctx, "cv/1/a.pdf", strings.NewReader("x"))

		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatal("expected watch to fire")
		}
		if !token.HasChanged() {
			t.Error("expected token to report change")
		}
	})

	t.Run("ignores non-matching write", func(t *testing.T) {
		a := New()
		token, err := a.Watch(ctx, "cv/**")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_ = a.Write(ctx, "job-spec/1/a.pdf", strings.NewReader("x"))
		time.Sleep(50 * time.Millisecond)

		if token.HasChanged() {
			t.Error("expected token to stay unchanged")
		}
	})

	t.Run("spent token is removed", func(t *testing.T) {
		a := New()
		_, _ = a.Watch(ctx, "*.txt")
		_ = a.Write(ctx, "a.txt", strings.NewReader("x"))

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if a.watchCount() == 0 {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Error("expected spent watch to be removed")
	})

	t.Run("invalid pattern", func(t *testing.T) {
		a := New()
		if _, err := a.Watch(ctx, "cv/[a"); err == nil {
			t.Error("expected error for invalid pattern")
		}
	})
}

func TestStagingWatchReleasedOnCancel(t *testing.T) {
	a := New()
	staging := specscribe.NewStagingArea(a)

	stop, err := staging.OnStaged(context.Background(), specscribe.KindCV, func() {})
	if err != nil {
		t.Fatalf("OnStaged() error = %v", err)
	}
	if n := a.watchCount(); n != 1 {
		t.Fatalf("expected 1 pending watch, got %d", n)
	}

	stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a.watchCount() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("expected no watches after cancel, got %d", a.watchCount())
}

func (a *Adapter) watchCount() int {
	a.watchMu.RLock()
	defer a.watchMu.RUnlock()
	return len(a.watches)
}

func TestConcurrency(t *testing.T) {
	ctx := context.Background()
	a := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := "cv/" + string(rune('a'+i%26)) + "/" + time.Now().Format("150405.000000000") + ".txt"
			_ = a.Write(ctx, p, strings.NewReader("x"), specscribe.WithOverwrite(true))
			_, _ = a.ListContents(ctx, "cv", true)
		}(i)
	}
	wg.Wait()

	entries, err := a.ListContents(ctx, "cv", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if int64(len(entries)) != a.Size() {
		t.Errorf("size %d does not match %d stored files", a.Size(), len(entries))
	}
}

func TestRegisteredDriver(t *testing.T) {
	fs, err := specscribe.CreateDriver(&specscribe.Config{Driver: "memory", MemoryMaxSize: 64})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, ok := fs.(*Adapter)
	if !ok {
		t.Fatalf("expected *Adapter, got %T", fs)
	}
	if a.maxSize != 64 {
		t.Errorf("expected maxSize=64, got %d", a.maxSize)
	}
}
