package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/modkit/internal/module"
	"github.com/vk/modkit/internal/settings"
	"github.com/vk/modkit/internal/testutil"
)

// setup writes files below a fresh root and returns the root plus a factory
// whose bundled data dir is <root>/share.
func setup(t *testing.T, files map[string]string) (string, *module.Factory) {
	t.Helper()

	root := t.TempDir()
	testutil.Mkdirs(t, root, "share/modules", "etc/modules", "lib/modules")
	testutil.WriteFiles(t, root, files)

	env := &settings.Settings{
		DataDir:         filepath.Join(root, "share"),
		SystemConfigDir: filepath.Join(root, "etc"),
		WorkDir:         root,
	}
	return root, module.NewFactory(module.NewResolver(env))
}

var baseTree = map[string]string{
	"lib/modules/welcome/module.desc":      "type: view\ninterface: qtplugin\nname: welcome\n",
	"lib/modules/shellprocess/module.desc": "type: job\ninterface: process\nname: shellprocess\nrequiredModules: [mount]\n",
	"lib/modules/umount/module.desc":       "type: job\ninterface: python\nemergency: true\n",
	"share/modules/umount.conf":            "emergency: true\n",
	"etc/modules/welcome.conf":             "marker: system\n",
}

func TestLoadDirectory(t *testing.T) {
	root, f := setup(t, baseTree)
	ctx, logs := testutil.LogContext(t)
	reg := New(f)

	require.NoError(t, reg.LoadDirectory(ctx, filepath.Join(root, "lib/modules")))

	var keys []string
	for _, m := range reg.Modules() {
		keys = append(keys, m.InstanceKey().String())
	}
	assert.Equal(t, []string{"shellprocess@shellprocess", "umount@umount", "welcome@welcome"}, keys)

	umount, ok := reg.Get("umount@umount")
	require.True(t, ok)
	assert.Equal(t, "umount", umount.Name(), "name falls back to the directory name")
	assert.True(t, umount.IsEmergency())

	welcome, _ := reg.Get("welcome@welcome")
	assert.Equal(t, "system", welcome.ConfigurationMap().String("marker", ""))

	shell, _ := reg.Get("shellprocess@shellprocess")
	assert.Equal(t, []string{"mount"}, shell.RequiredModules())

	d, ok := reg.Descriptor("welcome")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "lib/modules/welcome"), d.Dir)
	testutil.AssertLogged(t, logs, "Modules loaded.", "loaded=3")
}

func TestLoadDirectorySkipsBadModules(t *testing.T) {
	files := map[string]string{
		"lib/modules/good/module.desc":    "type: job\ninterface: process\nname: good\n",
		"lib/modules/badtype/module.desc": "type: gadget\ninterface: process\nname: badtype\n",
		"lib/modules/broken/module.desc":  "type: [job\n",
		"lib/modules/badconf/module.desc": "type: job\ninterface: process\nname: badconf\n",
		"share/modules/badconf.conf":      "a: b: c\n",
	}

	t.Run("lenient", func(t *testing.T) {
		root, f := setup(t, files)
		ctx, _ := testutil.LogContext(t)
		reg := New(f)

		require.NoError(t, reg.LoadDirectory(ctx, filepath.Join(root, "lib/modules")))

		require.Len(t, reg.Modules(), 1)
		assert.Equal(t, "good", reg.Modules()[0].Name())
		failed := reg.Failed()
		assert.ErrorIs(t, failed["badtype@badtype"], module.ErrUnsupportedInterface)
		assert.ErrorIs(t, failed["badconf@badconf"], module.ErrConfigParse)
	})

	t.Run("strict", func(t *testing.T) {
		root, f := setup(t, files)
		ctx, _ := testutil.LogContext(t)
		reg := New(f, Strict())

		err := reg.LoadDirectory(ctx, filepath.Join(root, "lib/modules"))

		require.Error(t, err)
		assert.ErrorIs(t, err, module.ErrUnsupportedInterface)
		assert.ErrorIs(t, err, module.ErrConfigParse)
		assert.Contains(t, err.Error(), "broken")
	})
}

func TestLoadDirectoryMissingRoot(t *testing.T) {
	root, f := setup(t, nil)
	ctx, _ := testutil.LogContext(t)

	err := New(f).LoadDirectory(ctx, filepath.Join(root, "nowhere"))

	assert.Error(t, err)
}

func TestLoadDirectoryDuplicateNames(t *testing.T) {
	root, f := setup(t, map[string]string{
		"lib/modules/a/module.desc": "type: job\ninterface: process\nname: same\n",
		"lib/modules/b/module.desc": "type: job\ninterface: process\nname: same\n",
	})
	ctx, logs := testutil.LogContext(t)
	reg := New(f, Strict())

	err := reg.LoadDirectory(ctx, filepath.Join(root, "lib/modules"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), `module "same" defined in both`)
	assert.Len(t, reg.Modules(), 1)
	testutil.AssertLogged(t, logs, "Duplicate module name.")
}

func TestAddInstance(t *testing.T) {
	root, f := setup(t, map[string]string{
		"lib/modules/shellprocess/module.desc":  "type: job\ninterface: process\nname: shellprocess\n",
		"share/modules/shellprocess_before.conf": "marker: before\n",
	})
	ctx, _ := testutil.LogContext(t)
	reg := New(f)
	require.NoError(t, reg.LoadDirectory(ctx, filepath.Join(root, "lib/modules")))

	m, err := reg.AddInstance(ctx, "shellprocess", "before", "shellprocess_before.conf")
	require.NoError(t, err)
	assert.Equal(t, "shellprocess@before", m.InstanceKey().String())
	assert.Equal(t, "before", m.ConfigurationMap().String("marker", ""))

	_, err = reg.AddInstance(ctx, "shellprocess", "before", "shellprocess_before.conf")
	assert.ErrorIs(t, err, ErrDuplicateInstance)

	_, err = reg.AddInstance(ctx, "nonexistent", "x", "x.conf")
	assert.ErrorIs(t, err, ErrUnknownModule)

	assert.Len(t, reg.Modules(), 2)
	assert.Contains(t, reg.Failed(), "nonexistent@x")
	assert.NotContains(t, reg.Failed(), "shellprocess@before")
}

func TestReload(t *testing.T) {
	root, f := setup(t, map[string]string{
		"lib/modules/welcome/module.desc": "type: view\ninterface: qtplugin\nname: welcome\n",
		"share/modules/welcome.conf":      "marker: one\n",
	})
	ctx, _ := testutil.LogContext(t)
	reg := New(f)
	require.NoError(t, reg.LoadDirectory(ctx, filepath.Join(root, "lib/modules")))

	testutil.WriteFiles(t, root, map[string]string{"share/modules/welcome.conf": "marker: two\n"})
	require.NoError(t, reg.Reload(ctx, "welcome@welcome"))

	m, _ := reg.Get("welcome@welcome")
	assert.Equal(t, "two", m.ConfigurationMap().String("marker", ""))

	assert.ErrorIs(t, reg.Reload(ctx, "welcome@other"), ErrNotLoaded)

	testutil.WriteFiles(t, root, map[string]string{"share/modules/welcome.conf": "marker: [\n"})
	assert.ErrorIs(t, reg.Reload(ctx, "welcome@welcome"), module.ErrConfigParse)
}

func TestConcurrentReadsAndReloads(t *testing.T) {
	root, f := setup(t, baseTree)
	ctx, _ := testutil.LogContext(t)
	reg := New(f)
	require.NoError(t, reg.LoadDirectory(ctx, filepath.Join(root, "lib/modules")))

	held, ok := reg.Get("welcome@welcome")
	require.True(t, ok)

	errs := make([]error, 16)
	testutil.RunConcurrently(t, len(errs), func(i int) {
		if i%2 == 0 {
			errs[i] = reg.Reload(ctx, "welcome@welcome")
			return
		}
		if _, ok := reg.Get("welcome@welcome"); !ok {
			errs[i] = ErrNotLoaded
		}
		_ = reg.Modules()
		_ = held.ConfigurationMap()
		_ = held.ConfigPath()
		_ = held.IsEmergency()
	})

	for _, err := range errs {
		assert.NoError(t, err)
	}
	m, _ := reg.Get("welcome@welcome")
	assert.Equal(t, "system", m.ConfigurationMap().String("marker", ""))
}

func TestNamesWithSeparatorAreRejected(t *testing.T) {
	root, f := setup(t, map[string]string{
		"lib/modules/a/module.desc":     "type: job\ninterface: process\nname: a@b\n",
		"lib/modules/x@y/module.desc":   "type: job\ninterface: process\n",
		"lib/modules/plain/module.desc": "type: job\ninterface: process\nname: plain\n",
	})
	ctx, logs := testutil.LogContext(t)
	reg := New(f, Strict())

	err := reg.LoadDirectory(ctx, filepath.Join(root, "lib/modules"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Contains(t, err.Error(), `"a@b"`)
	assert.Contains(t, err.Error(), `"x@y"`)
	require.Len(t, reg.Modules(), 1)
	assert.Equal(t, "plain@plain", reg.Modules()[0].InstanceKey().String())
	testutil.AssertLogged(t, logs, "Bad module name.")

	for _, id := range []string{"b@c", ""} {
		_, err = reg.AddInstance(ctx, "plain", id, "plain.conf")
		assert.ErrorIs(t, err, ErrInvalidName, "instance id %q", id)
	}
	assert.Len(t, reg.Modules(), 1)

	key, err := module.ParseInstanceKey(reg.Modules()[0].InstanceKey().String())
	require.NoError(t, err)
	assert.Equal(t, module.InstanceKey{Module: "plain", ID: "plain"}, key)
}
