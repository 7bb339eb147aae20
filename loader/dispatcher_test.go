package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPermissiveDispatcher(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		path string
		want Action
	}{
		{"Foo.class", ActionClass},
		{"lib/commons.jar", ActionJar},
		{"dist.zip", ActionZip},
		{"Dist.ZIP", ActionZip},
		{"README.md", ActionIgnore},
		{"Foo.java", ActionIgnore},
		{"META-INF/MANIFEST.MF", ActionIgnore},
		{"META-INF/", ActionDirectory},
		{"app.war", ActionZip},
		{"noextension", ActionZip},
		{dir, ActionDirectory},
	}

	d := PermissiveDispatcher{}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := d.Dispatch(tt.path); got != tt.want {
				t.Errorf("Dispatch(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestStrictDispatcher(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		path string
		want Action
	}{
		{"Foo.class", ActionClass},
		{"lib/commons.jar", ActionJar},
		{"dist.zip", ActionZip},
		{"app.war", ActionIgnore},
		{"noextension", ActionIgnore},
		{"README.md", ActionIgnore},
		{dir, ActionDirectory},
	}

	d := StrictDispatcher{}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := d.Dispatch(tt.path); got != tt.want {
				t.Errorf("Dispatch(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestDispatchEntry(t *testing.T) {
	dir := t.TempDir()
	if wd, err := os.Getwd(); err != nil {
		t.Fatal(err)
	} else if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	} else {
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}
	if err := os.Mkdir("Foo.class", 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		dispatcher Dispatcher
		entry      string
		want       Action
	}{
		{"permissive class", PermissiveDispatcher{}, "Foo.class", ActionClass},
		{"permissive directory", PermissiveDispatcher{}, "META-INF/", ActionDirectory},
		{"permissive unknown", PermissiveDispatcher{}, "app.war", ActionZip},
		{"strict class", StrictDispatcher{}, "Foo.class", ActionClass},
		{"strict unknown", StrictDispatcher{}, "app.war", ActionIgnore},
		{"modified only", NewModifiedOnlyDispatcher(StrictDispatcher{}), "Foo.class", ActionClass},
		{"plain func", DispatcherFunc(func(string) Action { return ActionJar }), "Foo.class", ActionJar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DispatchEntry(tt.dispatcher, tt.entry); got != tt.want {
				t.Errorf("DispatchEntry(%q) = %s, want %s", tt.entry, got, tt.want)
			}
		})
	}
}

// countingDispatcher returns a fixed action and counts calls.
type countingDispatcher struct {
	action Action
	calls  int
}

func (c *countingDispatcher) Dispatch(path string) Action {
	c.calls++
	return c.action
}

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestModifiedOnlyDispatcher(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("non-existing file", func(t *testing.T) {
		delegate := &countingDispatcher{action: ActionClass}
		d := NewModifiedOnlyDispatcher(delegate)
		path := filepath.Join(t.TempDir(), "missing.class")

		for i := 0; i < 2; i++ {
			if got := d.Dispatch(path); got != ActionClass {
				t.Errorf("Dispatch() #%d = %s, want %s", i, got, ActionClass)
			}
		}
		if delegate.calls != 2 {
			t.Errorf("delegate calls = %d, want 2", delegate.calls)
		}
		if d.Cache.Len() != 0 {
			t.Errorf("Cache.Len() = %d, want 0", d.Cache.Len())
		}
	})

	t.Run("unchanged file", func(t *testing.T) {
		delegate := &countingDispatcher{action: ActionClass}
		d := NewModifiedOnlyDispatcher(delegate)
		path := filepath.Join(t.TempDir(), "A.class")
		touch(t, path, base)

		if got := d.Dispatch(path); got != ActionClass {
			t.Errorf("first Dispatch() = %s, want %s", got, ActionClass)
		}
		if got := d.Dispatch(path); got != ActionIgnore {
			t.Errorf("repeat Dispatch() = %s, want %s", got, ActionIgnore)
		}
		if delegate.calls != 1 {
			t.Errorf("delegate calls = %d, want 1", delegate.calls)
		}
	})

	t.Run("modified file", func(t *testing.T) {
		delegate := &countingDispatcher{action: ActionClass}
		d := NewModifiedOnlyDispatcher(delegate)
		path := filepath.Join(t.TempDir(), "A.class")
		touch(t, path, base)

		d.Dispatch(path)
		touch(t, path, base.Add(time.Minute))
		if got := d.Dispatch(path); got != ActionClass {
			t.Errorf("Dispatch() after modification = %s, want %s", got, ActionClass)
		}
		if got := d.Dispatch(path); got != ActionIgnore {
			t.Errorf("Dispatch() after re-caching = %s, want %s", got, ActionIgnore)
		}
		if delegate.calls != 2 {
			t.Errorf("delegate calls = %d, want 2", delegate.calls)
		}
	})

	for _, action := range []Action{ActionDirectory, ActionZip, ActionJar} {
		t.Run(action.String()+" is never cached", func(t *testing.T) {
			delegate := &countingDispatcher{action: action}
			d := NewModifiedOnlyDispatcher(delegate)
			path := filepath.Join(t.TempDir(), "input")
			touch(t, path, base)

			for i := 0; i < 2; i++ {
				if got := d.Dispatch(path); got != action {
					t.Errorf("Dispatch() #%d = %s, want %s", i, got, action)
				}
			}
			if delegate.calls != 2 {
				t.Errorf("delegate calls = %d, want 2", delegate.calls)
			}
		})
	}

	t.Run("reset", func(t *testing.T) {
		delegate := &countingDispatcher{action: ActionClass}
		d := NewModifiedOnlyDispatcher(delegate)
		path := filepath.Join(t.TempDir(), "A.class")
		touch(t, path, base)

		d.Dispatch(path)
		if d.Cache.Len() != 1 {
			t.Fatalf("Cache.Len() = %d, want 1", d.Cache.Len())
		}
		d.Cache.Reset()
		if d.Cache.Len() != 0 {
			t.Errorf("Cache.Len() after Reset = %d, want 0", d.Cache.Len())
		}
		if got := d.Dispatch(path); got != ActionClass {
			t.Errorf("Dispatch() after Reset = %s, want %s", got, ActionClass)
		}
	})

	t.Run("ignored results are cached", func(t *testing.T) {
		delegate := &countingDispatcher{action: ActionIgnore}
		d := NewModifiedOnlyDispatcher(delegate)
		path := filepath.Join(t.TempDir(), "notes.txt")
		touch(t, path, base)

		d.Dispatch(path)
		d.Dispatch(path)
		if delegate.calls != 1 {
			t.Errorf("delegate calls = %d, want 1", delegate.calls)
		}
	})
}

func TestActionString(t *testing.T) {
	if got := ActionJar.String(); got != "jar" {
		t.Errorf("String() = %q, want %q", got, "jar")
	}
	if got := Action(42).String(); got != "unknown" {
		t.Errorf("String() = %q, want %q", got, "unknown")
	}
}
