package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dhamidi/classreader/classfile"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("classreader.loader")

// Loader expands paths into class files and reports progress to Listener.
// A Loader runs one session at a time.
type Loader struct {
	Dispatcher Dispatcher
	Listener   LoadListener
}

// New returns a Loader using the permissive dispatcher when d is nil.
func New(d Dispatcher, listeners ...LoadListener) *Loader {
	if d == nil {
		d = PermissiveDispatcher{}
	}
	var listener LoadListener = BaseLoadListener{}
	switch len(listeners) {
	case 0:
	case 1:
		listener = listeners[0]
	default:
		listener = MultiListener(listeners)
	}
	return &Loader{Dispatcher: d, Listener: listener}
}

// Load runs one session over paths. Each path becomes a group. Failures
// are logged and collected; loading moves on to the next input. The
// returned error joins every failure, plus ctx.Err() if the session was
// cancelled.
func (l *Loader) Load(ctx context.Context, paths ...string) error {
	s := &session{
		ctx:        ctx,
		dispatcher: l.Dispatcher,
		listener:   l.Listener,
	}
	if s.dispatcher == nil {
		s.dispatcher = PermissiveDispatcher{}
	}
	if s.listener == nil {
		s.listener = BaseLoadListener{}
	}

	s.listener.BeginSession(LoadEvent{})
	for _, path := range paths {
		if s.cancelled() {
			break
		}
		s.loadPath(path)
	}
	s.listener.EndSession(LoadEvent{})

	return errors.Join(s.errs...)
}

type session struct {
	ctx        context.Context
	dispatcher Dispatcher
	listener   LoadListener
	groups     []string
	errs       []error
}

func (s *session) cancelled() bool {
	if err := s.ctx.Err(); err != nil {
		if len(s.errs) == 0 || !errors.Is(s.errs[len(s.errs)-1], err) {
			s.errs = append(s.errs, err)
		}
		return true
	}
	return false
}

func (s *session) fail(err error) {
	s.errs = append(s.errs, err)
}

func (s *session) group() string {
	if len(s.groups) == 0 {
		return ""
	}
	return s.groups[len(s.groups)-1]
}

func (s *session) inGroup(name string, size int, body func()) {
	log.Infof("begin group %s (%d entries)", name, size)
	s.listener.BeginGroup(LoadEvent{Group: name, Size: size})
	s.groups = append(s.groups, name)

	body()

	s.groups = s.groups[:len(s.groups)-1]
	s.listener.EndGroup(LoadEvent{Group: name})
	log.Infof("end group %s", name)
}

func (s *session) inFile(name string, body func()) {
	s.listener.BeginFile(LoadEvent{Group: s.group(), Filename: name})
	body()
	s.listener.EndFile(LoadEvent{Group: s.group(), Filename: name})
}

func (s *session) dispatch(path string) Action {
	action := s.dispatcher.Dispatch(path)
	log.Debugf("%s %s", action, path)
	return action
}

func (s *session) dispatchEntry(name string) Action {
	action := DispatchEntry(s.dispatcher, name)
	log.Debugf("%s %s in %s", action, name, s.group())
	return action
}

func (s *session) loadPath(path string) {
	switch action := s.dispatch(path); action {
	case ActionClass:
		s.inGroup(path, 1, func() {
			s.inFile(path, func() { s.loadClassFile(path) })
		})
	case ActionDirectory:
		s.loadDirectory(path)
	case ActionZip, ActionJar:
		// A missing input is an error even when its name only guessed at
		// an archive.
		if _, err := os.Stat(path); err != nil {
			log.Errorf("cannot open %s: %s", path, err)
			s.fail(fmt.Errorf("failed to open %s: %w", path, err))
			return
		}
		s.loadArchiveFile(path)
	}
}

func (s *session) loadClassFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Errorf("cannot read %s: %s", path, err)
		s.fail(fmt.Errorf("failed to read %s: %w", path, err))
		return
	}
	s.decode(path, data)
}

// decode reports exactly one BeginClassfile/EndClassfile pair.
func (s *session) decode(name string, data []byte) {
	s.listener.BeginClassfile(LoadEvent{Group: s.group(), Filename: name})

	cf, err := classfile.ParseBytes(data)
	if err != nil {
		log.Errorf("cannot decode %s: %s", name, err)
		err = fmt.Errorf("failed to decode %s: %w", name, err)
		s.fail(err)
		s.listener.EndClassfile(LoadEvent{Group: s.group(), Filename: name, Err: err})
		return
	}
	s.listener.EndClassfile(LoadEvent{Group: s.group(), Filename: name, Classfile: cf})
}

func (s *session) loadDirectory(root string) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warningf("cannot walk %s: %s", p, err)
			s.fail(fmt.Errorf("failed to walk %s: %w", p, err))
			return nil
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		s.fail(fmt.Errorf("failed to walk %s: %w", root, err))
		return
	}

	s.inGroup(root, len(files), func() {
		for _, file := range files {
			if s.cancelled() {
				return
			}
			s.inFile(file, func() { s.loadDirectoryEntry(file) })
		}
	})
}

func (s *session) loadDirectoryEntry(path string) {
	switch s.dispatch(path) {
	case ActionClass:
		s.loadClassFile(path)
	case ActionZip, ActionJar:
		s.loadArchiveFile(path)
	}
}

func (s *session) loadArchiveFile(path string) {
	r, err := zip.OpenReader(path)
	if err != nil {
		s.archiveFailed(path, err)
		return
	}
	defer r.Close()
	s.loadArchive(path, &r.Reader)
}

func (s *session) loadArchiveBytes(name string, data []byte) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		s.archiveFailed(name, err)
		return
	}
	s.loadArchive(name, r)
}

// archiveFailed only counts as an error when the name promised an archive;
// the permissive dispatcher guesses at unknown extensions.
func (s *session) archiveFailed(name string, err error) {
	switch extension(name) {
	case ".zip", ".jar":
		log.Errorf("cannot open archive %s: %s", name, err)
		s.fail(fmt.Errorf("failed to open %s: %w", name, err))
	default:
		log.Warningf("not an archive %s: %s", name, err)
	}
}

func (s *session) loadArchive(name string, r *zip.Reader) {
	s.inGroup(name, len(r.File), func() {
		for _, f := range r.File {
			if s.cancelled() {
				return
			}
			s.inFile(f.Name, func() { s.loadArchiveEntry(f) })
		}
	})
}

func (s *session) loadArchiveEntry(f *zip.File) {
	if f.FileInfo().IsDir() {
		return
	}
	action := s.dispatchEntry(f.Name)
	if action != ActionClass && action != ActionZip && action != ActionJar {
		return
	}

	data, err := readEntry(f)
	if err != nil {
		log.Warningf("cannot read %s in %s: %s", f.Name, s.group(), err)
		s.fail(fmt.Errorf("failed to read %s in %s: %w", f.Name, s.group(), err))
		return
	}

	if action == ActionClass {
		s.decode(f.Name, data)
		return
	}
	s.loadArchiveBytes(f.Name, data)
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
