//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
)

// Test runs the full test suite.
func Test() error {
	return goTool("test", "./...")
}

// Vet runs go vet across the module.
func Vet() error {
	return goTool("vet", "./...")
}

func goTool(args ...string) error {
	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go %s: %w", args[0], err)
	}
	return nil
}
