package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testClient() *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(logger, 10*time.Millisecond, time.Millisecond)
}

func TestFetchAllFollowsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page1":
			fmt.Fprintf(w, `{"bills":[{"number":"HR1"},{"number":"HR2"}],"pagination":{"next":"%s/page2"}}`, srv.URL)
		case "/page2":
			fmt.Fprintf(w, `{"bills":[{"number":"HR3"}],"pagination":{"next":"%s/page3"}}`, srv.URL)
		case "/page3":
			fmt.Fprintf(w, `{"bills":[{"number":"HR4"}],"pagination":{"next":"%s/page4"}}`, srv.URL)
		case "/page4":
			fmt.Fprint(w, `{"bills":[],"pagination":{}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	pages, err := testClient().FetchAll(context.Background(), srv.URL+"/page1", nil, "bills")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 non-empty pages, got %d", len(pages))
	}
	if got := len(Items(pages)); got != 4 {
		t.Errorf("expected 4 items total, got %d", got)
	}
}

func TestFetchAllRetriesAfterRateLimit(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"votes":[{"id":1}],"pagination":{}}`)
	}))
	defer srv.Close()

	pages, err := testClient().FetchAll(context.Background(), srv.URL, nil, "votes")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("expected exactly 3 requests, got %d", got)
	}
	if len(pages) != 1 || len(pages[0].Items) != 1 {
		t.Errorf("expected the 200 page's single item, got %+v", pages)
	}
}

func TestFetchAllRateLimitHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := New(logger, time.Minute, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchAll(ctx, srv.URL, nil, "votes")
	if err == nil {
		t.Fatal("expected context error while cooling down")
	}
}

func TestFetchAllNotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	pages, err := testClient().FetchAll(context.Background(), srv.URL, nil, "bills")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected no pages for 404, got %d", len(pages))
	}
}

func TestFetchAllServerErrorTruncates(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page1":
			fmt.Fprintf(w, `{"bills":[{"number":"HR1"}],"pagination":{"next":"%s/page2"}}`, srv.URL)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	pages, err := testClient().FetchAll(context.Background(), srv.URL+"/page1", nil, "bills")
	if err != nil {
		t.Fatalf("expected partial result without error, got %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("expected 1 page before the failure, got %d", len(pages))
	}
}

func TestFetchAllSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Errorf("missing api key header")
		}
		fmt.Fprint(w, `{"bills":[],"pagination":{}}`)
	}))
	defer srv.Close()

	_, err := testClient().FetchAll(context.Background(), srv.URL, map[string]string{"X-Api-Key": "secret"}, "bills")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
}

func TestGetStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "a|b|c\n")
	}))
	defer srv.Close()

	rc, err := testClient().GetStream(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetStream failed: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "a|b|c\n" {
		t.Errorf("unexpected stream contents %q", data)
	}
}
