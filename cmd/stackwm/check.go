package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/keymap"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/runtimepath"
	"github.com/1broseidon/stackwm/internal/script"
	"github.com/1broseidon/stackwm/internal/wm"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration without touching the display",
	Long: `Load the configuration file, validate every setting and binding, and
compile the user script. Key names are only checked for syntax because no
keyboard map is available offline.

The effective bindings are printed on success.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := globalOpts.configPath
		if path == "" {
			var err error
			if path, err = config.DefaultConfigPath(); err != nil {
				return err
			}
		}
		return checkConfig(cmd.OutOrStdout(), path)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// offlineResolver hands out a stable keycode per key name.
type offlineResolver map[string]platform.Keycode

func (r offlineResolver) Keycode(sym string) (platform.Keycode, error) {
	if sym == "" {
		return 0, keymap.ErrUnknownKey
	}
	code, ok := r[sym]
	if !ok {
		code = platform.Keycode(len(r) + 8)
		r[sym] = code
	}
	return code, nil
}

func checkConfig(w io.Writer, path string) error {
	res, err := config.LoadFromPath(path)
	if err != nil {
		return err
	}
	cfg := res.Config

	var problems []error
	bad := func(p string, err error) {
		problems = append(problems, &config.ValidationError{Path: p, Source: res.Sources[p], Err: err})
	}

	resolver := offlineResolver{}
	seen := map[keymap.Chord]string{}
	bindings := cfg.EffectiveBindings()
	for i, b := range bindings {
		chord, err := keymap.Parse(resolver, b.Keys)
		if err != nil {
			bad(fmt.Sprintf("bindings.%d.keys", i), err)
			continue
		}
		if prev, dup := seen[chord]; dup {
			bad(fmt.Sprintf("bindings.%d.keys", i), fmt.Errorf("%s is already bound by %s", b.Keys, prev))
		}
		seen[chord] = b.Keys
		if err := wm.ValidateAction(b.Action, b.Args...); err != nil {
			bad(fmt.Sprintf("bindings.%d.action", i), err)
		}
	}

	scriptPath := cfg.Script
	if scriptPath == "" {
		if scriptPath, err = runtimepath.ScriptPath(); err != nil {
			return err
		}
	}
	if err := script.Check(scriptPath); err != nil {
		problems = append(problems, err)
	}

	if len(problems) > 0 {
		return errors.Join(problems...)
	}

	source := res.Path
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintf(w, "config: %s\n", source)
	fmt.Fprintf(w, "script: %s\n", scriptPath)
	fmt.Fprintf(w, "layout: %s, gap: %d, ratio: %.2f\n\n", cfg.Layout, cfg.Gap, cfg.Ratio)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEYS\tACTION\tARGS")
	for _, b := range bindings {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Keys, b.Action, strings.Join(b.Args, " "))
	}
	return tw.Flush()
}
