package resolver_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"mmove/internal/classify"
	"mmove/internal/ledger"
	"mmove/internal/logging"
	"mmove/internal/resolver"
	"mmove/internal/services"
	"mmove/internal/testsupport"
)

func newResolver(store resolver.Store, opts ...resolver.Option) *resolver.Resolver {
	return resolver.New(store, afero.NewOsFs(), classify.Default(), logging.NewNop(), opts...)
}

func TestResolveSongYearSentinels(t *testing.T) {
	dir := t.TempDir()
	r := newResolver(nil)

	notSong := filepath.Join(dir, "cover.jpg")
	testsupport.WriteFile(t, notSong, 256)
	full := filepath.Join(dir, "full.mp3")
	testsupport.WriteID3Song(t, full, 4, testsupport.ID3Frame{ID: "TDRC", Text: "1999-06-01"})
	partial := filepath.Join(dir, "partial.mp3")
	testsupport.WriteID3Song(t, partial, 4, testsupport.ID3Frame{ID: "TDRC", Text: "1999-06"})
	structured := filepath.Join(dir, "structured.mp3")
	testsupport.WriteID3Song(t, structured, 3,
		testsupport.ID3Frame{ID: "TYER", Text: "1995"},
		testsupport.ID3Frame{ID: "TDRC", Text: "1980"},
	)
	untagged := filepath.Join(dir, "untagged.flac")
	testsupport.WriteFile(t, untagged, 256)
	malformed := filepath.Join(dir, "malformed.mp3")
	testsupport.WriteID3Song(t, malformed, 4, testsupport.ID3Frame{ID: "TDRC", Text: "19x9"})

	tests := []struct {
		path string
		want ledger.Year
	}{
		{notSong, ledger.Unknown()},
		{full, ledger.Resolved(1999)},
		{partial, ledger.Unknown()},
		{structured, ledger.Resolved(1995)},
		{untagged, ledger.Unknown()},
		{malformed, ledger.Unknown()},
	}
	for _, tt := range tests {
		got, err := r.ResolveSongYear(tt.path)
		if err != nil {
			t.Fatalf("ResolveSongYear(%s): %v", filepath.Base(tt.path), err)
		}
		if got != tt.want {
			t.Errorf("ResolveSongYear(%s) = %v, want %v", filepath.Base(tt.path), got, tt.want)
		}
	}

	strict := newResolver(nil, resolver.WithStrictYearParse(true))
	if _, err := strict.ResolveSongYear(malformed); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected strict mode to fail with ErrValidation, got %v", err)
	}
}

func TestResolvePathMissingIsErrored(t *testing.T) {
	got, err := newResolver(nil).ResolvePath(filepath.Join(t.TempDir(), "gone"))
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != ledger.Errored() {
		t.Fatalf("ResolvePath(missing) = %v, want error state", got)
	}
}

func TestResolveFolderYearIsOneLevelMax(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Album")
	testsupport.WriteID3Song(t, filepath.Join(dir, "a.mp3"), 3, testsupport.ID3Frame{ID: "TYER", Text: "2001"})
	testsupport.WriteID3Song(t, filepath.Join(dir, "b.mp3"), 3, testsupport.ID3Frame{ID: "TYER", Text: "1998"})
	testsupport.WriteID3Song(t, filepath.Join(dir, "c.mp3"), 3, testsupport.ID3Frame{ID: "TYER", Text: "2005"})
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), 10)
	testsupport.WriteID3Song(t, filepath.Join(dir, "Bonus", "d.mp3"), 3, testsupport.ID3Frame{ID: "TYER", Text: "2010"})

	got, err := newResolver(nil).ResolvePath(dir)
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != ledger.Resolved(2005) {
		t.Fatalf("folder year = %v, want 2005", got)
	}

	empty := filepath.Join(t.TempDir(), "Empty")
	testsupport.WriteID3Song(t, filepath.Join(empty, "Inner", "x.mp3"), 3, testsupport.ID3Frame{ID: "TYER", Text: "2010"})
	got, err = newResolver(nil).ResolvePath(empty)
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != ledger.Unknown() {
		t.Fatalf("folder without child songs = %v, want unknown", got)
	}
}

func TestRunPersistsEachOutcome(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	root := filepath.Join(testsupport.BaseDir(cfg), "Music")
	top := filepath.Join(root, "Rock-1990")

	album := filepath.Join(top, "AlbumA")
	testsupport.WriteID3Song(t, filepath.Join(album, "track1.mp3"), 3, testsupport.ID3Frame{ID: "TYER", Text: "1995"})
	loose := filepath.Join(top, "single.ogg")
	testsupport.WriteFile(t, loose, 256)

	albumItem := testsupport.MustInsert(t, store, &ledger.Item{CollectionRoot: root, Path: album, Depth: 1, IsDir: true, Genre: "Rock", SourceYear: 1990})
	looseItem := testsupport.MustInsert(t, store, &ledger.Item{CollectionRoot: root, Path: loose, Depth: 0, Genre: "Rock", SourceYear: 1990})
	goneItem := testsupport.MustInsert(t, store, &ledger.Item{CollectionRoot: root, Path: filepath.Join(top, "Gone"), Depth: 1, IsDir: true, Genre: "Rock", SourceYear: 1990})

	summary, err := newResolver(store).Run(ctx, root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 3 || summary.Resolved != 1 || summary.Unknown != 1 || summary.Errored != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	for id, want := range map[int64]ledger.Year{
		albumItem.ID: ledger.Resolved(1995),
		looseItem.ID: ledger.Unknown(),
		goneItem.ID:  ledger.Errored(),
	} {
		got, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Year != want {
			t.Errorf("item %s year = %v, want %v", got.Path, got.Year, want)
		}
	}

	again, err := newResolver(store).Run(ctx, root)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.Processed != 0 {
		t.Fatalf("expected no pending items on second run, got %+v", again)
	}
}

func TestRunStrictAbortsAndLeavesPending(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStrictYearParse())
	store := testsupport.MustOpenStore(t, cfg)
	root := filepath.Join(testsupport.BaseDir(cfg), "Music")
	song := filepath.Join(root, "Pop-2000", "bad.mp3")
	testsupport.WriteID3Song(t, song, 4, testsupport.ID3Frame{ID: "TDRC", Text: "2OO1"})
	item := testsupport.MustInsert(t, store, &ledger.Item{CollectionRoot: root, Path: song, Depth: 0, Genre: "Pop", SourceYear: 2000})

	r := newResolver(store, resolver.WithStrictYearParse(cfg.Resolver.StrictYearParse))
	if _, err := r.Run(context.Background(), root); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Year.IsPending() {
		t.Fatalf("expected item to stay pending, got %v", got.Year)
	}
}
