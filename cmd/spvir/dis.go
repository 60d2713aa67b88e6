package main

import (
	"os"

	"github.com/spf13/cobra"

	"spvir/internal/spirv"
)

var disCmd = &cobra.Command{
	Use:   "dis <module.spv>",
	Short: "Disassemble a SPIR-V binary",
	Args:  cobra.ExactArgs(1),
	RunE:  disExecution,
}

func disExecution(cmd *cobra.Command, args []string) error {
	setupColor(cmd)
	bin, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	instrs, err := spirv.DecodeBinary(bin)
	if err != nil {
		return err
	}
	spirv.Disassemble(os.Stdout, instrs)
	return nil
}
