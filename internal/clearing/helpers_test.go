package clearing

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"testing"

	"github.com/lumipallolabs/diskprune/internal/model"
)

// memFS mirrors a tree as a set of paths and records every call.
// Planned failures fire once.
type memFS struct {
	cwd     string
	entries map[string]bool // path -> is dir
	fail    map[string]error
	calls   []string
}

func newMemFS(tr *model.Tree) *memFS {
	fs := &memFS{
		entries: make(map[string]bool),
		fail:    make(map[string]error),
	}
	root := tr.Path(tr.Root())
	for dir := filepath.Dir(root); ; dir = filepath.Dir(dir) {
		fs.entries[dir] = true
		if dir == filepath.Dir(dir) {
			break
		}
	}
	var add func(id model.NodeID)
	add = func(id model.NodeID) {
		fs.entries[tr.Path(id)] = tr.Node(id).IsDir()
		for _, c := range tr.Children(id) {
			add(c)
		}
	}
	add(tr.Root())
	return fs
}

func (f *memFS) failOn(op, path string, errno syscall.Errno) {
	f.fail[op+" "+path] = &os.PathError{Op: op, Path: path, Err: errno}
}

// takeFailure returns and forgets the failure planned for op on path
func (f *memFS) takeFailure(op, path string) error {
	key := op + " " + path
	err := f.fail[key]
	delete(f.fail, key)
	return err
}

func (f *memFS) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(f.cwd, path)
}

func (f *memFS) Chdir(path string) error {
	target := f.resolve(path)
	f.calls = append(f.calls, "chdir "+target)
	if err := f.takeFailure("chdir", target); err != nil {
		return err
	}
	if f.cwd == "" && !filepath.IsAbs(path) {
		return &os.PathError{Op: "chdir", Path: path, Err: syscall.ENOENT}
	}
	isDir, ok := f.entries[target]
	if !ok {
		return &os.PathError{Op: "chdir", Path: target, Err: syscall.ENOENT}
	}
	if !isDir {
		return &os.PathError{Op: "chdir", Path: target, Err: syscall.ENOTDIR}
	}
	f.cwd = target
	return nil
}

func (f *memFS) Rmdir(name string) error {
	target := f.resolve(name)
	f.calls = append(f.calls, "rmdir "+target)
	if err := f.takeFailure("rmdir", target); err != nil {
		return err
	}
	if isDir, ok := f.entries[target]; !ok || !isDir {
		return &os.PathError{Op: "rmdir", Path: target, Err: syscall.ENOENT}
	}
	for p := range f.entries {
		if strings.HasPrefix(p, target+string(filepath.Separator)) {
			return &os.PathError{Op: "rmdir", Path: target, Err: syscall.ENOTEMPTY}
		}
	}
	delete(f.entries, target)
	return nil
}

func (f *memFS) Unlink(name string) error {
	target := f.resolve(name)
	f.calls = append(f.calls, "unlink "+target)
	if err := f.takeFailure("unlink", target); err != nil {
		return err
	}
	if isDir, ok := f.entries[target]; !ok || isDir {
		return &os.PathError{Op: "unlink", Path: target, Err: syscall.ENOENT}
	}
	delete(f.entries, target)
	return nil
}

func (f *memFS) exists(path string) bool {
	_, ok := f.entries[path]
	return ok
}

// below lists every path strictly below dir
func (f *memFS) below(dir string) []string {
	var out []string
	for p := range f.entries {
		if strings.HasPrefix(p, dir+string(filepath.Separator)) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// script feeds keys to blocking polls and lets tests react to node visits
type script struct {
	keys     []Key
	onVisit  func() Event
	blocking int
}

func (s *script) Poll(blocking bool) Event {
	if !blocking {
		if s.onVisit != nil {
			return s.onVisit()
		}
		return Event{}
	}
	s.blocking++
	if len(s.keys) == 0 {
		// an unexpected dialog ends the run instead of hanging the test
		return Event{Interrupt: true}
	}
	k := s.keys[0]
	s.keys = s.keys[1:]
	return Event{Key: k}
}

type recorder struct {
	views    []View
	returned model.NodeID
	returns  int
}

func (r *recorder) Draw(v View) {
	r.views = append(r.views, v)
}

func (r *recorder) Return(node model.NodeID) {
	r.returned = node
	r.returns++
}

// errorViews returns the first view of every error dialog shown
func (r *recorder) errorViews() []View {
	var out []View
	prev := StateConfirm
	for _, v := range r.views {
		if v.State == StateError && prev != StateError {
			out = append(out, v)
		}
		prev = v.State
	}
	return out
}

type fixture struct {
	tree  *model.Tree
	ids   map[string]model.NodeID
	fs    *memFS
	input *script
	hooks *recorder
	prefs *Prefs
	eng   *Engine
}

// newFixture builds /scan{keep, root{...}} from entries like
// "a", "b/", "b/c": entries ending in a slash are directories.
func newFixture(t *testing.T, entries ...string) *fixture {
	t.Helper()
	tr := model.NewTree("/scan", model.FlagDir)
	ids := map[string]model.NodeID{"scan": tr.Root()}
	ids["keep"] = tr.Add(tr.Root(), model.Node{Name: "keep", Flags: model.FlagFile})
	ids["root"] = tr.Add(tr.Root(), model.Node{Name: "root", Flags: model.FlagDir})

	for _, e := range entries {
		isDir := strings.HasSuffix(e, "/")
		rel := strings.TrimSuffix(e, "/")
		parent := ids["root"]
		if dir := filepath.Dir(rel); dir != "." {
			parent = ids[dir]
		}
		flags := model.FlagFile
		if isDir {
			flags = model.FlagDir
		}
		ids[rel] = tr.Add(parent, model.Node{Name: filepath.Base(rel), Size: 10, Flags: flags})
	}

	f := &fixture{
		tree:  tr,
		ids:   ids,
		fs:    newMemFS(tr),
		input: &script{},
		hooks: &recorder{returned: model.None},
		prefs: &Prefs{},
	}
	return f
}

func (f *fixture) engine() *Engine {
	e := New(f.tree, f.fs, f.input, f.hooks, f.prefs)
	e.SetUpdateDelay(0)
	return e
}

// run begins and runs a clear of "root" with the given keys
func (f *fixture) run(t *testing.T, keys ...Key) Result {
	t.Helper()
	f.input.keys = append(f.input.keys, keys...)
	e := f.engine()
	f.eng = e
	if err := e.Begin(f.ids["root"]); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	return e.Run()
}

func (f *fixture) path(name string) string {
	if name == "root" {
		return "/scan/root"
	}
	return filepath.Join("/scan/root", name)
}

func (f *fixture) engineCurrent() model.NodeID {
	return f.eng.Dialog().Current
}

func (f *fixture) inTree(name string) bool {
	return f.tree.Valid(f.ids[name])
}

// confirm is the key sequence that accepts "yes" from the default "no"
var confirm = []Key{KeyLeft, KeyAccept}
