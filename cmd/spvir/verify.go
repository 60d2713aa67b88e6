package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"spvir/internal/driver"
	"spvir/internal/encoding"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <module.svm>",
	Short: "Run the structural verifier over a serialized module",
	Args:  cobra.ExactArgs(1),
	RunE:  verifyExecution,
}

var (
	okMark   = color.New(color.FgGreen).Sprint("ok")
	failMark = color.New(color.FgRed).Sprint("FAIL")
)

func verifyExecution(cmd *cobra.Command, args []string) error {
	setupColor(cmd)
	quiet, _ := cmd.Flags().GetBool("quiet")
	jobs, _ := cmd.Flags().GetInt("jobs")

	mod, _, err := encoding.DecodeFile(args[0])
	if err != nil {
		return err
	}

	results, err := driver.VerifyModule(context.Background(), mod, driver.Options{Jobs: jobs})
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", failMark, res.Func, res.Err)
		} else if !quiet {
			fmt.Printf("%s %s\n", okMark, res.Func)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d functions failed verification", failed, len(results))
	}
	if !quiet {
		fmt.Printf("verified %d functions\n", len(results))
	}
	return nil
}
