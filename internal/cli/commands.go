package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/vk/modkit/internal/module"
	"github.com/vk/modkit/internal/settings"
	"gopkg.in/yaml.v3"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError("usage: modkit %s", usage)
		}
		return nil
	}
}

func newListCommand(opts *options, logW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Load all modules and list their instances",
		Args:  exactArgs(0, "list"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, logW)
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("INSTANCE", "TYPE", "INTERFACE", "EMERGENCY", "CONFIG", "LOCATION").
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return lipgloss.NewStyle()
				})
			for _, m := range a.Registry().Modules() {
				t.Row(
					m.InstanceKey().String(),
					m.TypeString(),
					m.InterfaceString(),
					fmt.Sprint(m.IsEmergency()),
					orDash(m.ConfigPath()),
					m.Location(),
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())

			failed := a.Registry().Failed()
			keys := make([]string, 0, len(failed))
			for key := range failed {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), failStyle.Render("failed: "+key+": "+failed[key].Error()))
			}
			return nil
		},
	}
}

func newShowCommand(opts *options, logW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "show <module@instance>",
		Short: "Show one module instance and its configuration",
		Args:  exactArgs(1, "show <module@instance>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := module.ParseInstanceKey(args[0])
			if err != nil {
				return usageError("%v", err)
			}
			a, err := loadApp(cmd, opts, logW)
			if err != nil {
				return err
			}
			m, ok := a.Registry().Get(key.String())
			if !ok {
				return &ExitError{Code: 1, Message: fmt.Sprintf("module instance %s is not loaded", key)}
			}
			return renderModule(cmd.OutOrStdout(), m)
		},
	}
}

func renderModule(w io.Writer, m *module.Module) error {
	field := func(label, v string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label+":"), v)
	}
	field("Instance", m.InstanceKey().String())
	field("Name", m.Name())
	field("Type", m.TypeString())
	field("Interface", m.InterfaceString())
	field("Location", m.Location())
	field("Requires", orDash(strings.Join(m.RequiredModules(), ", ")))
	field("Emergency", fmt.Sprintf("%v (eligible: %v)", m.IsEmergency(), m.MaybeEmergency()))
	field("Config file", orDash(m.ConfigPath()))

	cfg := m.ConfigurationMap()
	if len(cfg) == 0 {
		field("Configuration", "-")
		return nil
	}
	out, err := yaml.Marshal(map[string]any(cfg))
	if err != nil {
		return fmt.Errorf("render configuration: %w", err)
	}
	field("Configuration", "")
	_, err = w.Write(out)
	return err
}

func newCandidatesCommand(opts *options, logW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <module> <config-file>",
		Short: "Print the configuration lookup order for a module",
		Args:  exactArgs(2, "candidates <module> <config-file>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, opts)
			if err != nil {
				return err
			}
			resolver := module.NewResolver(cfg.Settings)
			for i, path := range resolver.Candidates(args[0], args[1]) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s%s\n", i+1, path, existsMarker(path))
			}
			return nil
		},
	}
}

var _ module.Environment = (*settings.Settings)(nil)

func existsMarker(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return "  (exists)"
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
