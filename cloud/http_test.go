package cloud_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobani/outrun/cloud"
	"github.com/tobani/outrun/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// docServer is a minimal in-memory document endpoint.
type docServer struct {
	mu   sync.Mutex
	docs map[string]cloud.Document
}

func newDocServer() *docServer {
	return &docServer{docs: make(map[string]cloud.Document)}
}

func (s *docServer) set(id string, doc cloud.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[id] = doc
}

func (s *docServer) get(id string) (cloud.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]

	return doc, ok
}

func (s *docServer) handler(t *testing.T) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/users/"):]

		switch r.Method {
		case http.MethodPatch:
			var doc cloud.Document

			require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))

			doc.LastUpdated = time.Now()
			s.set(id, doc)

			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			doc, ok := s.get(id)
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}

			require.NoError(t, json.NewEncoder(w).Encode(doc))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func TestPushStoresDocument(t *testing.T) {
	backend := newDocServer()
	srv := httptest.NewServer(backend.handler(t))

	defer srv.Close()

	client := cloud.NewClient(
		srv.URL,
		discardLogger(),
		cloud.WithHTTPClient(srv.Client()),
	)

	runs := []models.Run{{ID: "run-1", Date: "2026-02-14"}}

	err := client.Push(context.Background(), "athlete-1", cloud.Document{
		Runs: &runs,
	})
	assert.NoError(t, err)

	doc, ok := backend.get("athlete-1")
	assert.True(t, ok)
	require.NotNil(t, doc.Runs)
	assert.Len(t, *doc.Runs, 1)
}

func TestPushKeepsEmptyLists(t *testing.T) {
	bodies := make(chan []byte, 1)
	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, err := io.ReadAll(r.Body)
			require.NoError(t, err)

			bodies <- b

			w.WriteHeader(http.StatusOK)
		}),
	)

	defer srv.Close()

	client := cloud.NewClient(srv.URL, discardLogger())

	// An emptied list must reach the merge as [], while lists the push
	// does not carry stay absent entirely.
	runs := []models.Run{}

	err := client.Push(context.Background(), "athlete-1", cloud.Document{
		Runs: &runs,
	})
	assert.NoError(t, err)

	body := string(<-bodies)
	assert.Contains(t, body, `"runs":[]`)
	assert.NotContains(t, body, `"weights"`)
	assert.NotContains(t, body, `"layoutOrder"`)
}

func TestPushReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}),
	)

	defer srv.Close()

	client := cloud.NewClient(srv.URL, discardLogger())

	err := client.Push(context.Background(), "athlete-1", cloud.Document{})
	assert.Error(t, err)
}

func TestSubscribeDeliversOnStampAdvance(t *testing.T) {
	backend := newDocServer()
	srv := httptest.NewServer(backend.handler(t))

	defer srv.Close()

	client := cloud.NewClient(
		srv.URL,
		discardLogger(),
		cloud.WithPollInterval(10*time.Millisecond),
	)

	received := make(chan cloud.Document, 16)

	unsubscribe, err := client.Subscribe(
		context.Background(),
		"athlete-1",
		func(doc cloud.Document) {
			received <- doc
		},
	)
	require.NoError(t, err)

	defer unsubscribe()

	// No document yet, so nothing should arrive.
	select {
	case <-received:
		t.Fatal("callback fired before any document existed")
	case <-time.After(50 * time.Millisecond):
	}

	backend.set("athlete-1", cloud.Document{
		Runs:        &[]models.Run{{ID: "run-1"}},
		LastUpdated: time.Now(),
	})

	select {
	case doc := <-received:
		require.NotNil(t, doc.Runs)
		assert.Len(t, *doc.Runs, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for remote change")
	}

	// An unchanged stamp must not re-deliver.
	select {
	case <-received:
		t.Fatal("callback fired again without a stamp advance")
	case <-time.After(50 * time.Millisecond):
	}

	backend.set("athlete-1", cloud.Document{
		Runs:        &[]models.Run{{ID: "run-1"}, {ID: "run-2"}},
		LastUpdated: time.Now(),
	})

	select {
	case doc := <-received:
		require.NotNil(t, doc.Runs)
		assert.Len(t, *doc.Runs, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the second remote change")
	}
}

func TestUnsubscribeStopsCallbacks(t *testing.T) {
	backend := newDocServer()
	srv := httptest.NewServer(backend.handler(t))

	defer srv.Close()

	client := cloud.NewClient(
		srv.URL,
		discardLogger(),
		cloud.WithPollInterval(10*time.Millisecond),
	)

	received := make(chan cloud.Document, 16)

	unsubscribe, err := client.Subscribe(
		context.Background(),
		"athlete-1",
		func(doc cloud.Document) {
			received <- doc
		},
	)
	require.NoError(t, err)

	unsubscribe()

	backend.set("athlete-1", cloud.Document{
		Runs:        &[]models.Run{{ID: "run-1"}},
		LastUpdated: time.Now(),
	})

	select {
	case <-received:
		t.Fatal("callback fired after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNewWithoutEndpointIsNoop(t *testing.T) {
	syncer := cloud.New("", discardLogger())

	_, ok := syncer.(cloud.Noop)
	assert.True(t, ok)

	assert.NoError(
		t,
		syncer.Push(context.Background(), "athlete-1", cloud.Document{}),
	)

	unsubscribe, err := syncer.Subscribe(
		context.Background(),
		"athlete-1",
		func(cloud.Document) {
			t.Fatal("noop subscription must never deliver")
		},
	)
	assert.NoError(t, err)

	unsubscribe()
}
