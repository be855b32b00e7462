package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/farmergreg/rfsnotify"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/fsnotify.v1"

	"hotfolder/internal/filter"
)

// Handle is an active directory subscription. Close is idempotent.
type Handle interface {
	Close() error
}

// Subscriber acquires file-creation subscriptions on directories. The
// fsnotify-backed Notifier is the production implementation; tests substitute
// their own.
type Subscriber interface {
	Subscribe(dir string, f *filter.Filter, recursive bool, onCreate func(path string)) (Handle, error)
}

// Notifier subscribes to directories via fsnotify (rfsnotify when recursive)
// and reports each created file once it has settled on disk.
type Notifier struct {
	// SettleDelay is slept before a created file is examined. Addresses
	// an issue with Windows File Explorer writing files in bursts.
	SettleDelay time.Duration
}

func NewNotifier(settle time.Duration) *Notifier {
	return &Notifier{SettleDelay: settle}
}

func (n *Notifier) Subscribe(dir string, f *filter.Filter, recursive bool, onCreate func(string)) (Handle, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", dir)
	}

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
		closer func() error
	)
	if recursive {
		w, err := rfsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		if err := w.AddRecursive(abs); err != nil {
			w.Close()
			return nil, errors.Wrapf(err, "watch %s", abs)
		}
		events, errs, closer = w.Events, w.Errors, w.Close
	} else {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		if err := w.Add(abs); err != nil {
			w.Close()
			return nil, errors.Wrapf(err, "watch %s", abs)
		}
		events, errs, closer = w.Events, w.Errors, w.Close
	}

	s := &subscription{closer: closer}
	go s.loop(n, events, errs, f, onCreate)
	return s, nil
}

type subscription struct {
	once   sync.Once
	closer func() error
	err    error
}

func (s *subscription) Close() error {
	s.once.Do(func() { s.err = s.closer() })
	return s.err
}

// loop delivers qualifying creation events until the watcher is closed. Each
// event settles and fires on its own goroutine so a slow file never delays
// notifications for the next one.
func (s *subscription) loop(n *Notifier, events <-chan fsnotify.Event, errs <-chan error, f *filter.Filter, onCreate func(string)) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Op != fsnotify.Create {
				continue
			}
			if !f.Match(filepath.Base(event.Name)) {
				log.Debugf("Filtered out: %s", event.Name)
				continue
			}
			go func(path string) {
				if !n.settled(path) {
					return
				}
				onCreate(path)
			}(event.Name)
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Error("watch error: ", err)
		}
	}
}

// settled waits for the file to stop growing. Returns false for directories
// and for files that vanish before settling.
func (n *Notifier) settled(path string) bool {
	if n.SettleDelay > 0 {
		time.Sleep(n.SettleDelay)
	}
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	for i := 0; i < 10; i++ {
		size := fi.Size()
		time.Sleep(50 * time.Millisecond)
		if fi, err = os.Stat(path); err != nil {
			return false
		}
		if fi.Size() == size {
			return true
		}
	}
	log.Warnf("File never settled, skipping: %s", path)
	return false
}
