package main

import (
	"fmt"
	"strings"

	"spvir/internal/project"
	"spvir/internal/spirv"
)

// targetOptions merges the manifest's [target] section into SPIR-V
// emission options. Missing fields keep the defaults.
func targetOptions(man *project.Manifest) (spirv.Options, error) {
	opts := spirv.DefaultOptions()
	if man == nil {
		return opts, nil
	}
	tgt := man.Config.Target
	if tgt.Version != "" {
		v, err := parseVersion(tgt.Version)
		if err != nil {
			return opts, err
		}
		opts.Version = v
	}
	if len(tgt.Capabilities) > 0 {
		opts.Capabilities = opts.Capabilities[:0]
		for _, name := range tgt.Capabilities {
			c, err := parseCapability(name)
			if err != nil {
				return opts, err
			}
			opts.Capabilities = append(opts.Capabilities, c)
		}
	}
	return opts, nil
}

func parseVersion(s string) (spirv.Version, error) {
	var major, minor uint8
	if _, err := fmt.Sscanf(s, "%d.%d", &major, &minor); err != nil {
		return spirv.Version{}, fmt.Errorf("invalid SPIR-V version %q", s)
	}
	return spirv.Version{Major: major, Minor: minor}, nil
}

func parseCapability(s string) (spirv.Capability, error) {
	switch strings.ToLower(s) {
	case "matrix":
		return spirv.CapabilityMatrix, nil
	case "shader":
		return spirv.CapabilityShader, nil
	case "kernel":
		return spirv.CapabilityKernel, nil
	default:
		return 0, fmt.Errorf("unknown capability %q", s)
	}
}
