package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/veracitylab/veracity/internal/model"
)

// fakeAnalyzer implements Analyzer
type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]bool
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, url string) (*model.Report, error) {
	a.mu.Lock()
	a.calls = append(a.calls, url)
	a.mu.Unlock()

	if a.failFor[url] {
		return nil, errors.New("analysis failed")
	}
	return &model.Report{URL: url, VeracityScore: 100, Verdict: model.VerdictVerified}, nil
}

func TestBatchProcessor_ProcessURLs(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	processor := NewBatchProcessor(analyzer, 3)

	urls := []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
	}

	results := processor.ProcessURLs(context.Background(), urls)

	if len(results) != len(urls) {
		t.Fatalf("expected %d results, got %d", len(urls), len(results))
	}
	for _, result := range results {
		if result.Error != nil {
			t.Errorf("unexpected error for %s: %v", result.URL, result.Error)
		}
		if result.Report == nil {
			t.Errorf("missing report for %s", result.URL)
		}
	}
	if len(analyzer.calls) != len(urls) {
		t.Errorf("expected %d analyzer calls, got %d", len(urls), len(analyzer.calls))
	}
}

func TestBatchProcessor_LargeBatch(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	workers := 2
	processor := NewBatchProcessor(analyzer, workers)

	var urls []string
	for i := 0; i < workers*10; i++ {
		urls = append(urls, fmt.Sprintf("https://example.com/page-%d", i))
	}

	done := make(chan []*AnalyzeResult, 1)
	go func() {
		done <- processor.ProcessURLs(context.Background(), urls)
	}()

	select {
	case results := <-done:
		if len(results) != len(urls) {
			t.Fatalf("expected %d results, got %d", len(urls), len(results))
		}
		seen := make(map[string]bool, len(results))
		for _, result := range results {
			if result.Error != nil {
				t.Errorf("unexpected error for %s: %v", result.URL, result.Error)
			}
			seen[result.URL] = true
		}
		for _, url := range urls {
			if !seen[url] {
				t.Errorf("missing result for %s", url)
			}
		}
	case <-time.After(10 * time.Second):
		t.Fatal("batch stalled on input larger than the pool buffers")
	}
}

func TestBatchProcessor_PartialFailures(t *testing.T) {
	analyzer := &fakeAnalyzer{failFor: map[string]bool{"https://example.com/bad": true}}
	processor := NewBatchProcessor(analyzer, 2)

	results := processor.ProcessURLs(context.Background(), []string{
		"https://example.com/good",
		"https://example.com/bad",
	})

	var failed, succeeded int
	for _, result := range results {
		if result.GetError() != nil {
			failed++
			if result.URL != "https://example.com/bad" {
				t.Errorf("wrong URL failed: %s", result.URL)
			}
		} else {
			succeeded++
		}
	}
	if failed != 1 || succeeded != 1 {
		t.Errorf("expected 1 failure and 1 success, got %d/%d", failed, succeeded)
	}
}

func TestBatchProcessor_EmptyInput(t *testing.T) {
	processor := NewBatchProcessor(&fakeAnalyzer{}, 2)

	results := processor.ProcessURLs(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results for empty input, got %d", len(results))
	}
}

func TestReadURLsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := `# seed list
https://example.com/one

https://example.com/two
https://example.com/one
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	urls, err := ReadURLsFromFile(path)
	if err != nil {
		t.Fatalf("ReadURLsFromFile failed: %v", err)
	}

	want := []string{"https://example.com/one", "https://example.com/two"}
	if len(urls) != len(want) {
		t.Fatalf("expected %d URLs, got %d: %v", len(want), len(urls), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("url[%d]: expected %s, got %s", i, want[i], urls[i])
		}
	}
}

func TestReadURLsFromFile_Missing(t *testing.T) {
	if _, err := ReadURLsFromFile("/nonexistent/urls.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}
