package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"spvir/internal/cache"
	"spvir/internal/driver"
	"spvir/internal/encoding"
	"spvir/internal/observ"
	"spvir/internal/project"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] <module.svm>",
	Short: "Verify a serialized module and lower it to a SPIR-V binary",
	Args:  cobra.ExactArgs(1),
	RunE:  lowerExecution,
}

func init() {
	lowerCmd.Flags().StringP("output", "o", "", "output path (default: input with .spv extension)")
	lowerCmd.Flags().Bool("no-cache", false, "bypass the artifact cache")
	lowerCmd.Flags().Bool("timings", false, "report per-phase timings")
}

func lowerExecution(cmd *cobra.Command, args []string) error {
	setupColor(cmd)
	quiet, _ := cmd.Flags().GetBool("quiet")
	jobs, _ := cmd.Flags().GetInt("jobs")
	output, _ := cmd.Flags().GetString("output")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	timings, _ := cmd.Flags().GetBool("timings")

	timer := observ.NewTimer()
	defer func() {
		if timings {
			fmt.Fprint(os.Stderr, timer.Summary())
		}
	}()

	input := args[0]
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".spv"
	}

	man, _, err := project.Load(filepath.Dir(input))
	if err != nil {
		return err
	}
	opts, err := targetOptions(man)
	if err != nil {
		return err
	}
	useCache := !noCache && (man == nil || man.Config.Target.Cache)

	raw, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	var store *cache.DiskCache
	var key cache.Digest
	if useCache {
		// Cache failures downgrade to a cold build.
		if store, err = cache.Open("spvir"); err == nil {
			key = cache.Key(raw, fmt.Sprintf("spirv-%d.%d", opts.Version.Major, opts.Version.Minor))
			if bin, hit, err := store.Get(key); err == nil && hit {
				if !quiet {
					fmt.Printf("cached %s (%d bytes)\n", output, len(bin))
				}
				return os.WriteFile(output, bin, 0o644)
			}
		}
	}

	idx := timer.Begin("decode")
	mod, typesIn, err := encoding.DecodeFile(input)
	if err != nil {
		return err
	}
	timer.End(idx, fmt.Sprintf("%d funcs", len(mod.Funcs)))

	tbl := driver.TableFor(mod)
	var bin []byte
	err = timer.Time("lower", func() error {
		bin, err = driver.LowerModule(context.Background(), mod, tbl, typesIn, driver.Options{
			Jobs:  jobs,
			SPIRV: opts,
		})
		return err
	})
	if err != nil {
		return err
	}

	if store != nil {
		_ = timer.Time("cache", func() error {
			_ = store.Put(key, bin)
			return nil
		})
	}
	if err := os.WriteFile(output, bin, 0o644); err != nil {
		return err
	}
	if !quiet {
		fmt.Printf("wrote %s (%d bytes)\n", output, len(bin))
	}
	return nil
}
