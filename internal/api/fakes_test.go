// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	movieimport "github.com/tomtom215/marquee/internal/import"
	"github.com/tomtom215/marquee/internal/models"
)

// fakeMovieStore is an in-memory MovieStore.
type fakeMovieStore struct {
	mu      sync.Mutex
	pingErr error
	movies  map[int64]models.Movie
	similar map[int64][]models.SimilarMovie
	viz     map[string][]byte

	topSimilarCalls int
	saveCalls       int
}

func newFakeMovieStore() *fakeMovieStore {
	return &fakeMovieStore{
		movies:  make(map[int64]models.Movie),
		similar: make(map[int64][]models.SimilarMovie),
		viz:     make(map[string][]byte),
	}
}

func vizKey(id int64, kind string) string { return fmt.Sprintf("%d/%s", id, kind) }

func (f *fakeMovieStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeMovieStore) GetMovie(_ context.Context, id int64) (*models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.movies[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &m, nil
}

func (f *fakeMovieStore) FindMoviesByTitle(_ context.Context, title string) ([]models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Movie
	for id := int64(1); id <= int64(len(f.movies)); id++ {
		if m, ok := f.movies[id]; ok && strings.EqualFold(m.Title, title) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMovieStore) SearchMoviesByTitle(_ context.Context, fragment string, limit int) ([]models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Movie{}
	for id := int64(1); id <= int64(len(f.movies)) && len(out) < limit; id++ {
		if m, ok := f.movies[id]; ok && strings.Contains(strings.ToLower(m.Title), strings.ToLower(fragment)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMovieStore) GetTopSimilar(_ context.Context, id int64, limit int) ([]models.SimilarMovie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topSimilarCalls++
	out := append([]models.SimilarMovie{}, f.similar[id]...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMovieStore) GetVisualization(_ context.Context, id int64, kind string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.viz[vizKey(id, kind)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return payload, nil
}

func (f *fakeMovieStore) SaveVisualization(_ context.Context, id int64, kind string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	f.viz[vizKey(id, kind)] = append([]byte(nil), payload...)
	return nil
}

func (f *fakeMovieStore) ClearVisualizations(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.viz))
	f.viz = make(map[string][]byte)
	return n, nil
}

func (f *fakeMovieStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.topSimilarCalls
}

// fakeImporter blocks each run until released or stopped.
type fakeImporter struct {
	mu      sync.Mutex
	running bool
	runs    int
	path    string
	release chan struct{}
	stop    chan struct{}
	last    *movieimport.RunStats
}

func newFakeImporter() *fakeImporter {
	return &fakeImporter{release: make(chan struct{}), stop: make(chan struct{})}
}

func (f *fakeImporter) Run(_ context.Context, path string) (*movieimport.RunStats, error) {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return nil, movieimport.ErrImportInProgress
	}
	f.running = true
	f.runs++
	f.path = path
	release, stop := f.release, f.stop
	f.mu.Unlock()

	stats := &movieimport.RunStats{Status: movieimport.StatusCompleted, Stage: movieimport.StageSimilaritiesComputed}
	var err error
	select {
	case <-release:
	case <-stop:
		stats.Status = movieimport.StatusCancelled
		err = context.Canceled
	}

	f.mu.Lock()
	f.running = false
	f.last = stats
	f.mu.Unlock()
	return stats, err
}

func (f *fakeImporter) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return movieimport.ErrNoImportRunning
	}
	close(f.stop)
	f.stop = make(chan struct{})
	return nil
}

func (f *fakeImporter) GetStats() *movieimport.RunStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return &movieimport.RunStats{Status: movieimport.StatusRunning}
	}
	if f.last == nil {
		return &movieimport.RunStats{}
	}
	stats := *f.last
	return &stats
}

func (f *fakeImporter) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeImporter) waitRunning(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !f.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("import never started")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// envelope mirrors models.APIResponse with undecoded data.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func testConfig() *config.Config {
	return &config.Config{
		Cache:    config.CacheConfig{DefaultTTL: time.Minute},
		Security: config.SecurityConfig{RateLimitDisabled: true},
		Import:   config.ImportConfig{CatalogPath: "/data/movies.csv"},
	}
}

func newTestServer(t *testing.T, db MovieStore, store cache.Store, importer ImportController) (*Handler, http.Handler) {
	t.Helper()
	cfg := testConfig()
	h := NewHandler(db, store, importer, cfg)
	h.now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }
	return h, NewRouter(h, &cfg.Security).Setup()
}

func do(t *testing.T, srv http.Handler, method, target string, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (body %q)", method, target, err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dest); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
}

func errorCode(env envelope) string {
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}

func ptr[T any](v T) *T { return &v }

// seedCatalog stores six movies; movie 1 has five neighbors, movie 6 none.
func seedCatalog(f *fakeMovieStore) {
	mk := func(id int64, title, overview string, vote float64, genres ...string) models.Movie {
		m := models.Movie{MovieID: id, TMDBID: 1000 + id, Title: title, Overview: overview, VoteAverage: ptr(vote)}
		for i, g := range genres {
			m.Genres = append(m.Genres, models.Genre{ID: i + 1, Name: g})
		}
		return m
	}
	movies := []models.Movie{
		mk(1, "Alien", "A crew encounters a deadly alien aboard the ship", 8.4, "Horror", "Science Fiction"),
		mk(2, "Aliens", "Marines return to fight the alien colony", 8.3, "Action", "Science Fiction"),
		mk(3, "Alien 3", " No overview found ", 6.4, "Science Fiction"),
		mk(4, "Prometheus", "Explorers search for the origins of humanity", 7.0, "Science Fiction", "Mystery"),
		mk(5, "The Thing", "A shape shifting alien terrorizes an antarctic station", 8.1, "Horror", "Mystery"),
		mk(6, "Paddington", "A polite bear moves to London", 7.2, "Family", "Comedy"),
	}
	for _, m := range movies {
		f.movies[m.MovieID] = m
	}
	scores := []float64{0.92, 0.81, 0.77, 0.64}
	for i, target := range []int64{2, 5, 4, 3} {
		f.similar[1] = append(f.similar[1], models.SimilarMovie{Movie: f.movies[target], SimilarityScore: scores[i]})
	}
	f.similar[1] = append(f.similar[1], models.SimilarMovie{Movie: f.movies[6], SimilarityScore: 0.1})
}
