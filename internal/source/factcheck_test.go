package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/veracitylab/veracity/internal/model"
)

func factCheckConfig(baseURL string) model.FactCheckConfig {
	return model.FactCheckConfig{
		APIKey:   "test-key",
		BaseURL:  baseURL,
		Timeout:  2 * time.Second,
		PageSize: 5,
		Language: "en",
	}
}

func TestFactCheckAdapter_NoClaimsIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("query") != "https://example.com/story" {
			t.Errorf("unexpected query param: %q", q.Get("query"))
		}
		if q.Get("key") != "test-key" {
			t.Errorf("missing API key")
		}
		if q.Get("pageSize") != "5" {
			t.Errorf("unexpected pageSize: %q", q.Get("pageSize"))
		}
		if q.Get("languageCode") != "en" {
			t.Errorf("unexpected languageCode: %q", q.Get("languageCode"))
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	adapter := NewFactCheckAdapter(factCheckConfig(server.URL))
	signal := adapter.Check(context.Background(), Input{URL: "https://example.com/story", Text: "body", HasContent: true})

	if signal.Status != model.StatusUnavailable {
		t.Errorf("expected unavailable when no claims are found, got %s", signal.Status)
	}
}

func TestFactCheckAdapter_NoContentIsUnavailable(t *testing.T) {
	adapter := NewFactCheckAdapter(factCheckConfig("http://127.0.0.1:1"))
	signal := adapter.Check(context.Background(), Input{URL: "https://example.com/story"})

	if signal.Status != model.StatusUnavailable {
		t.Errorf("expected unavailable without extracted content, got %s", signal.Status)
	}
}

func TestFactCheckAdapter_PrefersTitleQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	adapter := NewFactCheckAdapter(factCheckConfig(server.URL))
	adapter.Check(context.Background(), Input{
		URL:        "https://example.com/story",
		Title:      "Miracle cure discovered",
		Text:       "body",
		HasContent: true,
	})

	if gotQuery != "Miracle cure discovered" {
		t.Errorf("expected title as query, got %q", gotQuery)
	}
}

func TestFactCheckAdapter_FalseClaim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"claims": [
				{
					"text": "Miracle cure discovered",
					"claimReview": [
						{"publisher": {"name": "ExampleCheck"}, "textualRating": "False"}
					]
				}
			]
		}`))
	}))
	defer server.Close()

	adapter := NewFactCheckAdapter(factCheckConfig(server.URL))
	signal := adapter.Check(context.Background(), Input{URL: "https://example.com/story", Text: "body", HasContent: true})

	if signal.Status != model.StatusOk {
		t.Fatalf("expected ok status, got %s (%s)", signal.Status, signal.Detail)
	}
	if signal.Risk != 1.0 {
		t.Errorf("expected risk 1.0 for False rating, got %f", signal.Risk)
	}
	if !signal.HasTag(model.TagFabricatedClaim) {
		t.Errorf("expected fabricated_claim tag, got %v", signal.Tags)
	}
}

func TestFactCheckAdapter_MixedRatingsTakeWorst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"claims": [
				{
					"text": "Budget doubled last year",
					"claimReview": [
						{"publisher": {"name": "CheckOne"}, "textualRating": "True"},
						{"publisher": {"name": "CheckTwo"}, "textualRating": "Mostly False"}
					]
				}
			]
		}`))
	}))
	defer server.Close()

	adapter := NewFactCheckAdapter(factCheckConfig(server.URL))
	signal := adapter.Check(context.Background(), Input{URL: "https://example.com/story", Text: "body", HasContent: true})

	if signal.Status != model.StatusOk {
		t.Fatalf("expected ok status, got %s", signal.Status)
	}
	if signal.Risk != 0.8 {
		t.Errorf("expected worst risk 0.8, got %f", signal.Risk)
	}
	if !signal.HasTag(model.TagDisputedClaim) {
		t.Errorf("expected disputed_claim tag, got %v", signal.Tags)
	}
	if signal.HasTag(model.TagFabricatedClaim) {
		t.Errorf("did not expect fabricated_claim tag, got %v", signal.Tags)
	}
}

func TestFactCheckAdapter_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter := NewFactCheckAdapter(factCheckConfig(server.URL))
	signal := adapter.Check(context.Background(), Input{URL: "https://example.com/", Text: "body", HasContent: true})

	if signal.Status != model.StatusUnavailable {
		t.Errorf("expected unavailable on 503, got %s", signal.Status)
	}
}

func TestFactCheckAdapter_BadJSONIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer server.Close()

	adapter := NewFactCheckAdapter(factCheckConfig(server.URL))
	signal := adapter.Check(context.Background(), Input{URL: "https://example.com/", Text: "body", HasContent: true})

	if signal.Status != model.StatusError {
		t.Errorf("expected error on malformed response, got %s", signal.Status)
	}
}

func TestRatingRisk(t *testing.T) {
	tests := []struct {
		rating string
		want   float64
	}{
		{"True", 0.0},
		{"Mostly True", 0.2},
		{"Half True", 0.5},
		{"Mixture", 0.5},
		{"Misleading", 0.8},
		{"Mostly False", 0.8},
		{"False", 1.0},
		{"Pants on Fire!", 1.0},
		{"Fabricated content", 1.0},
		{"Four Pinocchios", 0.5},
		{"", 0.5},
	}

	for _, tt := range tests {
		if got := ratingRisk(tt.rating); got != tt.want {
			t.Errorf("ratingRisk(%q) = %f, want %f", tt.rating, got, tt.want)
		}
	}
}
