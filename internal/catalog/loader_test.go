// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleHeader = "adult,belongs_to_collection,budget,genres,id,overview,release_date,revenue,runtime,title,vote_average\n"

func TestLoadFullRow(t *testing.T) {
	csvData := sampleHeader +
		`False,"{'id': 10194, 'name': 'Toy Story Collection', 'poster_path': '/x.jpg'}",30000000,"[{'id': 16, 'name': 'Animation'}, {'id': 35, 'name': 'Comedy'}]",862,"Led by Woody,` + "\r\n" + `Andy's toys live happily.",1995-10-30,373554033,81.0,Toy Story,7.7` + "\n"

	records, stats, err := Load(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 1 || stats.Rows != 1 {
		t.Fatalf("Load() returned %d records (stats.Rows=%d), want 1", len(records), stats.Rows)
	}

	rec := records[0]
	if rec.ExternalID != 862 {
		t.Errorf("ExternalID = %d, want 862", rec.ExternalID)
	}
	if rec.Title != "Toy Story" {
		t.Errorf("Title = %q, want Toy Story", rec.Title)
	}
	if rec.Overview != "Led by Woody, Andy's toys live happily." {
		t.Errorf("Overview = %q, want line breaks replaced by spaces", rec.Overview)
	}
	if got := rec.GenreNames(); len(got) != 2 || got[0] != "Animation" || got[1] != "Comedy" {
		t.Errorf("GenreNames() = %v, want [Animation Comedy]", got)
	}
	if rec.Genres[0].ID != 16 {
		t.Errorf("Genres[0].ID = %d, want 16", rec.Genres[0].ID)
	}
	if rec.CollectionName == nil || *rec.CollectionName != "Toy Story Collection" {
		t.Errorf("CollectionName = %v, want Toy Story Collection", rec.CollectionName)
	}
	if rec.Budget == nil || *rec.Budget != 30000000 {
		t.Errorf("Budget = %v, want 30000000", rec.Budget)
	}
	if rec.Runtime == nil || *rec.Runtime != 81 {
		t.Errorf("Runtime = %v, want 81", rec.Runtime)
	}
	if rec.VoteAverage == nil || *rec.VoteAverage != 7.7 {
		t.Errorf("VoteAverage = %v, want 7.7", rec.VoteAverage)
	}
	want := time.Date(1995, 10, 30, 0, 0, 0, 0, time.UTC)
	if rec.ReleaseDate == nil || !rec.ReleaseDate.Equal(want) {
		t.Errorf("ReleaseDate = %v, want %v", rec.ReleaseDate, want)
	}
}

func TestLoadMissingValues(t *testing.T) {
	csvData := "id,title,budget,revenue,runtime,vote_average,genres,belongs_to_collection,release_date,overview\n" +
		"1,Zeroes,0,0.0,0,0,[],,,\n" +
		"2,Garbage,abc,NaN,,x,not a list,NaN,1995-13-45,\n" +
		"3,Empty genre,,,,,,{'name': None},,Some text\n"

	records, stats, err := Load(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}

	zero := records[0]
	if zero.Budget != nil || zero.Revenue != nil || zero.Runtime != nil {
		t.Errorf("zero budget/revenue/runtime = %v/%v/%v, want all nil", zero.Budget, zero.Revenue, zero.Runtime)
	}
	if zero.VoteAverage == nil || *zero.VoteAverage != 0 {
		t.Errorf("VoteAverage = %v, want 0 (zero is a real rating)", zero.VoteAverage)
	}

	garbage := records[1]
	if garbage.Budget != nil || garbage.Revenue != nil || garbage.VoteAverage != nil {
		t.Errorf("non-numeric values should be nil, got budget=%v revenue=%v vote=%v",
			garbage.Budget, garbage.Revenue, garbage.VoteAverage)
	}
	if garbage.Genres == nil || len(garbage.Genres) != 0 {
		t.Errorf("Genres = %v, want empty non-nil list", garbage.Genres)
	}
	if garbage.CollectionName != nil {
		t.Errorf("CollectionName = %v, want nil for NaN", *garbage.CollectionName)
	}
	if garbage.ReleaseDate != nil {
		t.Errorf("ReleaseDate = %v, want nil for invalid date", garbage.ReleaseDate)
	}

	if records[2].CollectionName != nil {
		t.Errorf("CollectionName = %v, want nil when name is None", *records[2].CollectionName)
	}

	if stats.MalformedGenres != 1 {
		t.Errorf("MalformedGenres = %d, want 1", stats.MalformedGenres)
	}
	if stats.InvalidDates != 1 {
		t.Errorf("InvalidDates = %d, want 1", stats.InvalidDates)
	}
	if stats.MissingOverviews != 2 {
		t.Errorf("MissingOverviews = %d, want 2", stats.MissingOverviews)
	}
}

func TestParseExternalID(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"862", 862, true},
		{" 42 ", 42, true},
		{"862.0", 862, true},
		{"1997-08-20", 0, false},
		{"", 0, false},
		{"12.5", 0, false},
		{"NaN", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseExternalID(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("parseExternalID(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLoadNonIntegerIDsCollapseToZero(t *testing.T) {
	csvData := "id,title\n1997-08-20,Broken A\n2012-09-29,Broken B\n5,Fine\n"

	records, stats, err := Load(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if records[0].ExternalID != 0 || records[1].ExternalID != 0 {
		t.Errorf("ExternalIDs = %d, %d, want 0, 0", records[0].ExternalID, records[1].ExternalID)
	}
	if stats.InvalidIDs != 2 {
		t.Errorf("InvalidIDs = %d, want 2", stats.InvalidIDs)
	}
}

func TestLoadShortRowAndExtraColumns(t *testing.T) {
	csvData := "imdb_id,id,title,overview,popularity\n" +
		"tt0114709,862,Toy Story\n" +
		"tt0113497,8844,Jumanji,A board game,17.01\n"

	records, _, err := Load(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Overview != "" {
		t.Errorf("Overview = %q, want empty for short row", records[0].Overview)
	}
	if records[1].Overview != "A board game" {
		t.Errorf("Overview = %q, want A board game", records[1].Overview)
	}
	if records[0].Genres == nil {
		t.Error("Genres = nil, want empty list when column is absent")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "missing id column", input: "title,overview\nA,B\n", wantErr: ErrMissingIDColumn},
		{name: "empty input", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(context.Background(), strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Load(ctx, strings.NewReader("id,title\n1,A\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies_metadata.csv")
	if err := os.WriteFile(path, []byte("\ufeffid,title\n1,A\n2,B\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	records, _, err := LoadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len(records) = %d, want 2", len(records))
	}

	if _, _, err := LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("LoadFile(missing) error = nil, want error")
	}
}
