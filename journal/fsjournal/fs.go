package fsjournal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/build"
	"github.com/trie-migrate/westend-migrate/journal"
)

var log = logging.Logger("fsjournal")

const RFC3339nocolon = "2006-01-02T150405Z0700"

const filePrefix = "westend-migrate-journal"

// fsJournal is a basic journal backed by files on a filesystem.
type fsJournal struct {
	journal.EventTypeRegistry

	dir       string
	sizeLimit int64
	keep      int

	fi    *os.File
	fSize int64

	incoming chan *journal.Event

	closing chan struct{}
	closed  chan struct{}
}

// OpenFSJournalPath constructs a rolling filesystem journal under
// path/journal, rolling files at journal.EnvMaxSize bytes and keeping
// journal.EnvMaxBackups rolled files.
func OpenFSJournalPath(path string, disabled journal.DisabledEvents) (journal.Journal, error) {
	return openFSJournal(path, disabled, journal.EnvMaxSize, int(journal.EnvMaxBackups))
}

func openFSJournal(path string, disabled journal.DisabledEvents, sizeLimit int64, keep int) (*fsJournal, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to expand journal path: %w", err)
	}

	dir := filepath.Join(path, "journal")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to mk directory %s for file journal: %w", dir, err)
	}

	f := &fsJournal{
		EventTypeRegistry: journal.NewEventTypeRegistry(disabled),
		dir:               dir,
		sizeLimit:         sizeLimit,
		keep:              keep,
		incoming:          make(chan *journal.Event, 32),
		closing:           make(chan struct{}),
		closed:            make(chan struct{}),
	}

	if err := f.rollJournalFile(); err != nil {
		return nil, err
	}

	go f.runLoop()

	return f, nil
}

func (f *fsJournal) RecordEvent(evtType journal.EventType, supplier func() interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("recovered from panic while recording journal event; type=%s, err=%v", evtType, r)
		}
	}()

	if !evtType.Enabled() {
		return
	}

	je := &journal.Event{
		EventType: evtType,
		Timestamp: build.Clock.Now(),
		Data:      supplier(),
	}
	select {
	case f.incoming <- je:
	case <-f.closing:
		log.Warnw("journal closed but tried to log event", "event", evtType)
	}
}

func (f *fsJournal) Close() error {
	close(f.closing)
	<-f.closed
	return nil
}

func (f *fsJournal) putEvent(evt *journal.Event) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	n, err := f.fi.Write(append(b, '\n'))
	if err != nil {
		return err
	}

	f.fSize += int64(n)

	if f.fSize >= f.sizeLimit {
		_ = f.rollJournalFile()
	}

	return nil
}

func (f *fsJournal) rollJournalFile() error {
	if f.fi != nil {
		_ = f.fi.Close()
	}
	current := filepath.Join(f.dir, filePrefix+".ndjson")
	rolled := filepath.Join(f.dir, fmt.Sprintf(
		"%s-%s.ndjson", filePrefix,
		build.Clock.Now().Format(RFC3339nocolon),
	))

	// check if journal file exists
	if fi, err := os.Stat(current); err == nil && !fi.IsDir() {
		err := os.Rename(current, rolled)
		if err != nil {
			return xerrors.Errorf("failed to roll journal file: %w", err)
		}
	}

	nfi, err := os.Create(current)
	if err != nil {
		return xerrors.Errorf("failed to create journal file: %w", err)
	}

	f.fi = nfi
	f.fSize = 0

	return f.pruneRolled()
}

// pruneRolled removes the oldest rolled files beyond keep.
func (f *fsJournal) pruneRolled() error {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return xerrors.Errorf("listing journal directory: %w", err)
	}
	var rolled []string
	for _, e := range entries {
		n := e.Name()
		if strings.HasPrefix(n, filePrefix+"-") && strings.HasSuffix(n, ".ndjson") {
			rolled = append(rolled, n)
		}
	}
	if len(rolled) <= f.keep {
		return nil
	}
	// the timestamp format sorts chronologically
	sort.Strings(rolled)
	for _, n := range rolled[:len(rolled)-f.keep] {
		if err := os.Remove(filepath.Join(f.dir, n)); err != nil {
			log.Warnw("failed to prune journal file", "file", n, "error", err)
		}
	}
	return nil
}

func (f *fsJournal) runLoop() {
	defer close(f.closed)

	for {
		select {
		case je := <-f.incoming:
			if err := f.putEvent(je); err != nil {
				log.Errorw("failed to write out journal event", "event", je.EventType, "err", err)
			}
		case <-f.closing:
			// drain what was queued before Close
			for {
				select {
				case je := <-f.incoming:
					if err := f.putEvent(je); err != nil {
						log.Errorw("failed to write out journal event", "event", je.EventType, "err", err)
					}
				default:
					_ = f.fi.Close()
					return
				}
			}
		}
	}
}
