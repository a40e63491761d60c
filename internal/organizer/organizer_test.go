package organizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"mmove/internal/config"
	"mmove/internal/fileutil"
	"mmove/internal/ledger"
	"mmove/internal/logging"
	"mmove/internal/organizer"
	"mmove/internal/testsupport"
)

type fixture struct {
	cfg   *config.Config
	store *ledger.Store
	root  string
	top   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	root := filepath.Join(testsupport.BaseDir(cfg), "Music")
	top := filepath.Join(root, "Rock-1990")
	testsupport.MkdirAll(t, top)
	return fixture{cfg: cfg, store: testsupport.MustOpenStore(t, cfg), root: root, top: top}
}

// add records path with the given depth and final year state. Directories and
// files are created on disk when missing.
func (f fixture) add(t *testing.T, path string, depth int, isDir bool, year ledger.Year) *ledger.Item {
	t.Helper()
	if isDir {
		testsupport.MkdirAll(t, path)
	} else if _, err := os.Stat(path); err != nil {
		testsupport.WriteFile(t, path, 64)
	}
	item := testsupport.MustInsert(t, f.store, &ledger.Item{
		CollectionRoot: f.root,
		Path:           path,
		Depth:          depth,
		IsDir:          isDir,
		Genre:          "Rock",
		SourceYear:     1990,
	})
	if err := f.store.SetYear(context.Background(), item.ID, year); err != nil {
		t.Fatalf("SetYear(%s): %v", path, err)
	}
	return item
}

func (f fixture) organizer(opts ...organizer.Option) *organizer.Organizer {
	return organizer.New(f.store, afero.NewOsFs(), f.cfg.Mover, logging.NewNop(), opts...)
}

func sequence(values ...uint32) func() uint32 {
	i := 0
	return func() uint32 {
		v := values[len(values)-1]
		if i < len(values) {
			v = values[i]
		}
		i++
		return v
	}
}

func TestFolderName(t *testing.T) {
	if got := organizer.FolderName("Hip-Hop", 2001); got != "Hip-Hop-2001" {
		t.Fatalf("FolderName = %q", got)
	}
	if got := organizer.DestinationRoot("/m", "Rock", 1995); got != filepath.Join("/m", "Rock-1995") {
		t.Fatalf("DestinationRoot = %q", got)
	}
}

func TestMaterializeCreatesEachGroupOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, f.top, 0, true, ledger.Resolved(2000))
	f.add(t, filepath.Join(f.top, "AlbumA"), 1, true, ledger.Resolved(1995))
	f.add(t, filepath.Join(f.top, "loose.mp3"), 0, false, ledger.Resolved(1995))
	f.add(t, filepath.Join(f.top, "AlbumB"), 1, true, ledger.Resolved(1990))
	f.add(t, filepath.Join(f.top, "AlbumC"), 1, true, ledger.Resolved(1700))
	f.add(t, filepath.Join(f.top, "AlbumD"), 1, true, ledger.Unknown())

	org := f.organizer()
	summary, err := org.Materialize(ctx, f.root)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if summary.Groups != 1 || summary.Created != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if info, err := os.Stat(filepath.Join(f.root, "Rock-1995")); err != nil || !info.IsDir() {
		t.Fatalf("expected Rock-1995 folder: %v", err)
	}
	for _, absent := range []string{"Rock-2000", "Rock-1700"} {
		if _, err := os.Stat(filepath.Join(f.root, absent)); !os.IsNotExist(err) {
			t.Fatalf("did not expect %s, stat err=%v", absent, err)
		}
	}

	again, err := org.Materialize(ctx, f.root)
	if err != nil {
		t.Fatalf("second Materialize: %v", err)
	}
	if again.Created != 0 || again.Existing != 1 {
		t.Fatalf("expected idempotent materialize, got %+v", again)
	}
}

type recordingProgress struct {
	total    int
	outcomes []organizer.Outcome
	finished bool
}

func (p *recordingProgress) Start(total int) { p.total = total }
func (p *recordingProgress) Step(_ *ledger.Item, outcome organizer.Outcome) {
	p.outcomes = append(p.outcomes, outcome)
}
func (p *recordingProgress) Finish() { p.finished = true }

func TestMoveDeepestFirstAndReportsBlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	albumB := filepath.Join(f.top, "AlbumB")
	disc1 := filepath.Join(albumB, "Disc1")
	disc2 := filepath.Join(albumB, "Disc2")
	albumC := filepath.Join(f.top, "AlbumC")

	f.add(t, albumB, 1, true, ledger.Resolved(2001))
	disc1Item := f.add(t, disc1, 2, true, ledger.Resolved(2001))
	f.add(t, disc2, 2, true, ledger.Unknown())
	testsupport.WriteFile(t, filepath.Join(disc1, "a.mp3"), 64)
	testsupport.WriteFile(t, filepath.Join(disc2, "b.mp3"), 64)
	albumCItem := f.add(t, albumC, 1, true, ledger.Resolved(2001))
	testsupport.WriteFile(t, filepath.Join(albumC, "c.mp3"), 64)
	testsupport.MkdirAll(t, filepath.Join(albumC, "Artwork"))
	f.add(t, filepath.Join(f.top, "Gone"), 1, true, ledger.Resolved(2001))
	if err := os.Remove(filepath.Join(f.top, "Gone")); err != nil {
		t.Fatal(err)
	}

	progress := &recordingProgress{}
	org := f.organizer(organizer.WithProgress(progress))
	if _, err := org.Materialize(ctx, f.root); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	summary, err := org.Move(ctx, f.root)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if summary.Candidates != 4 || summary.Moved != 2 || summary.Blocked != 1 || summary.Missing != 1 || summary.Pruned != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(summary.BlockedDirs) != 1 || summary.BlockedDirs[0].Path != albumB || summary.BlockedDirs[0].Child != disc2 {
		t.Fatalf("unexpected blocked dirs %+v", summary.BlockedDirs)
	}
	if progress.total != 4 || len(progress.outcomes) != 4 || !progress.finished {
		t.Fatalf("unexpected progress %+v", progress)
	}
	if progress.outcomes[0] != organizer.OutcomeMoved {
		t.Fatalf("expected the depth 2 item to move first, got %v", progress.outcomes)
	}

	dest := filepath.Join(f.root, "Rock-2001")
	for id, want := range map[int64]string{
		disc1Item.ID:  filepath.Join(dest, "Disc1"),
		albumCItem.ID: filepath.Join(dest, "AlbumC"),
	} {
		item, err := f.store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if !item.Moved || item.Destination != want || item.MovedAt == nil {
			t.Fatalf("item %s not marked moved to %s: %+v", item.Path, want, item)
		}
		if _, err := os.Stat(want); err != nil {
			t.Fatalf("expected %s on disk: %v", want, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dest, "AlbumC", "Artwork")); !os.IsNotExist(err) {
		t.Fatalf("expected empty Artwork pruned before the move, stat err=%v", err)
	}
	if _, err := os.Stat(disc2); err != nil {
		t.Fatalf("blocking child should stay: %v", err)
	}

	again, err := org.Move(ctx, f.root)
	if err != nil {
		t.Fatalf("second Move: %v", err)
	}
	if again.Moved != 0 || again.Blocked != 1 {
		t.Fatalf("expected blocked directory to stay blocked, got %+v", again)
	}
}

func TestMoveStopsWhenMaterializedFolderMissing(t *testing.T) {
	f := newFixture(t)
	song := filepath.Join(f.top, "late.mp3")
	f.add(t, song, 0, false, ledger.Resolved(2001))

	_, err := f.organizer().Move(context.Background(), f.root)
	if !errors.Is(err, organizer.ErrDestinationMissing) {
		t.Fatalf("expected ErrDestinationMissing, got %v", err)
	}
	if _, err := os.Stat(song); err != nil {
		t.Fatalf("source should be untouched: %v", err)
	}
}

func TestMoveSkipsYearsOutsideMaterializeWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old := filepath.Join(f.top, "Baroque")
	testsupport.WriteFile(t, filepath.Join(old, "fugue.mp3"), 64)
	oldItem := f.add(t, old, 1, true, ledger.Resolved(1700))
	songItem := f.add(t, filepath.Join(f.top, "song.mp3"), 0, false, ledger.Resolved(2001))

	org := f.organizer()
	if _, err := org.Materialize(ctx, f.root); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	summary, err := org.Move(ctx, f.root)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if summary.Candidates != 2 || summary.Unplaced != 1 || summary.Moved != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	moved, err := f.store.GetByID(ctx, songItem.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !moved.Moved || moved.Destination != filepath.Join(f.root, "Rock-2001", "song.mp3") {
		t.Fatalf("expected song moved, got %+v", moved)
	}
	if _, err := os.Stat(old); err != nil {
		t.Fatalf("out-of-window directory should stay: %v", err)
	}

	again, err := org.Move(ctx, f.root)
	if err != nil {
		t.Fatalf("second Move: %v", err)
	}
	if again.Candidates != 1 || again.Unplaced != 1 {
		t.Fatalf("unexpected second summary %+v", again)
	}
	kept, err := f.store.GetByID(ctx, oldItem.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if kept.Moved {
		t.Fatalf("out-of-window item marked moved: %+v", kept)
	}
}

// renameFailFs refuses to rename one source path.
type renameFailFs struct {
	afero.Fs
	src string
}

func (fs renameFailFs) Rename(oldname, newname string) error {
	if oldname == fs.src {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: os.ErrPermission}
	}
	return fs.Fs.Rename(oldname, newname)
}

func TestMoveContinuesAfterItemFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	albumA := filepath.Join(f.top, "AlbumA")
	albumB := filepath.Join(f.top, "AlbumB")
	testsupport.WriteFile(t, filepath.Join(albumA, "a.mp3"), 64)
	testsupport.WriteFile(t, filepath.Join(albumB, "b.mp3"), 64)
	aItem := f.add(t, albumA, 1, true, ledger.Resolved(2001))
	bItem := f.add(t, albumB, 1, true, ledger.Resolved(2001))

	fs := renameFailFs{Fs: afero.NewOsFs(), src: albumA}
	org := organizer.New(f.store, fs, f.cfg.Mover, logging.NewNop())
	if _, err := org.Materialize(ctx, f.root); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	summary, err := org.Move(ctx, f.root)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if summary.Failed != 1 || summary.Moved != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(albumA, "a.mp3")); err != nil {
		t.Fatalf("failed item should stay in place: %v", err)
	}
	failed, err := f.store.GetByID(ctx, aItem.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if failed.Moved {
		t.Fatalf("failed item marked moved: %+v", failed)
	}
	moved, err := f.store.GetByID(ctx, bItem.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !moved.Moved || moved.Destination != filepath.Join(f.root, "Rock-2001", "AlbumB") {
		t.Fatalf("expected AlbumB moved after the failure, got %+v", moved)
	}
}

func TestSafeMoveNeverOverwrites(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(f.root, "Rock-1995")

	t.Run("directory takes a suffix", func(t *testing.T) {
		testsupport.WriteFile(t, filepath.Join(dest, "AlbumA", "keep.mp3"), 10)
		testsupport.WriteFile(t, filepath.Join(dest, "AlbumA-42", "keep.mp3"), 10)
		src := filepath.Join(f.top, "AlbumA")
		testsupport.WriteFile(t, filepath.Join(src, "new.mp3"), 20)

		org := f.organizer(organizer.WithRand(sequence(42, 7)))
		final, err := org.SafeMove(src, dest)
		if err != nil {
			t.Fatalf("SafeMove: %v", err)
		}
		if final != filepath.Join(dest, "AlbumA-7") {
			t.Fatalf("final = %s", final)
		}
		if _, err := os.Stat(filepath.Join(final, "new.mp3")); err != nil {
			t.Fatalf("moved content missing: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dest, "AlbumA", "keep.mp3")); err != nil {
			t.Fatalf("existing directory disturbed: %v", err)
		}
	})

	t.Run("file is renamed in place first", func(t *testing.T) {
		testsupport.WriteFile(t, filepath.Join(dest, "track.mp3"), 10)
		src := filepath.Join(f.top, "track.mp3")
		testsupport.WriteFile(t, src, 30)

		org := f.organizer(organizer.WithRand(sequence(42)))
		final, err := org.SafeMove(src, dest)
		if err != nil {
			t.Fatalf("SafeMove: %v", err)
		}
		if final != filepath.Join(dest, "track-42.mp3") {
			t.Fatalf("final = %s", final)
		}
		info, err := os.Stat(filepath.Join(dest, "track.mp3"))
		if err != nil || info.Size() != 10 {
			t.Fatalf("existing file overwritten: %v", err)
		}
		if info, err := os.Stat(final); err != nil || info.Size() != 30 {
			t.Fatalf("moved file wrong: %v", err)
		}
		for _, gone := range []string{src, filepath.Join(f.top, "track-42.mp3")} {
			if _, err := os.Stat(gone); !os.IsNotExist(err) {
				t.Fatalf("expected %s gone, stat err=%v", gone, err)
			}
		}
	})

	t.Run("gives up after configured attempts", func(t *testing.T) {
		testsupport.MkdirAll(t, filepath.Join(dest, "AlbumZ"))
		testsupport.MkdirAll(t, filepath.Join(dest, "AlbumZ-5"))
		src := filepath.Join(f.top, "AlbumZ")
		testsupport.MkdirAll(t, src)

		settings := f.cfg.Mover
		settings.CollisionAttempts = 3
		org := organizer.New(f.store, afero.NewOsFs(), settings, logging.NewNop(), organizer.WithRand(sequence(5)))
		if _, err := org.SafeMove(src, dest); !errors.Is(err, fileutil.ErrTargetExists) {
			t.Fatalf("expected ErrTargetExists, got %v", err)
		}
		if _, err := os.Stat(src); err != nil {
			t.Fatalf("source should stay: %v", err)
		}
	})

	t.Run("missing destination", func(t *testing.T) {
		src := filepath.Join(f.top, "solo.mp3")
		testsupport.WriteFile(t, src, 5)
		_, err := f.organizer().SafeMove(src, filepath.Join(f.root, "Rock-1492"))
		if !errors.Is(err, organizer.ErrDestinationMissing) {
			t.Fatalf("expected ErrDestinationMissing, got %v", err)
		}
	})
}

func TestPlanDoesNotTouchDisk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	album := filepath.Join(f.top, "AlbumA")
	f.add(t, album, 1, true, ledger.Resolved(1995))
	f.add(t, filepath.Join(f.top, "loose.mp3"), 0, false, ledger.Resolved(2003))

	plan, err := f.organizer().Plan(ctx, f.root)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("expected 2 planned moves, got %d", len(plan))
	}
	if plan[0].Item.Path != album || plan[0].DestinationDir != filepath.Join(f.root, "Rock-1995") || plan[0].DestinationExists {
		t.Fatalf("unexpected first entry %+v", plan[0])
	}
	if _, err := os.Stat(filepath.Join(f.root, "Rock-1995")); !os.IsNotExist(err) {
		t.Fatalf("plan must not create folders, stat err=%v", err)
	}
}
