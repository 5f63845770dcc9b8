package module

import (
	"path/filepath"
	"testing"

	"github.com/vk/modkit/internal/settings"
	"github.com/vk/modkit/internal/testutil"
)

// layout is a throwaway filesystem with every configuration location the
// resolver knows about.
type layout struct {
	root      string
	moduleDir string
	env       *settings.Settings
}

func newLayout(t *testing.T) *layout {
	t.Helper()

	root := t.TempDir()
	moduleDir := testutil.Mkdirs(t, root, "share/modules/welcome", "etc/modules", "work/src/modules")
	return &layout{
		root:      root,
		moduleDir: moduleDir,
		env: &settings.Settings{
			DataDir:         filepath.Join(root, "share"),
			SystemConfigDir: filepath.Join(root, "etc"),
			WorkDir:         filepath.Join(root, "work"),
		},
	}
}

func (l *layout) write(t *testing.T, files map[string]string) {
	t.Helper()
	testutil.WriteFiles(t, l.root, files)
}

func (l *layout) factory(opts ...Option) *Factory {
	return NewFactory(NewResolver(l.env), opts...)
}

func descriptor(typ, intf, name string) Descriptor {
	return Descriptor{"type": typ, "interface": intf, "name": name}
}
