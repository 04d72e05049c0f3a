//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary    = "avatargen"
	binDir    = "bin"
	sampleDir = "build/sample"
)

var Default = Build

// Build compiles cmd/avatargen into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-o", filepath.Join(binDir, binary), "./cmd/avatargen")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Test runs the unit tests. Database tests run only when
// AVATARGEN_TEST_DATABASE_URL is set.
func Test() error {
	mg.Deps(Vet)
	args := []string{"test", "-race", "./..."}
	if !mg.Verbose() {
		args = append(args, "-short")
	}
	return sh.RunV("go", args...)
}

// Sample builds the binary, writes a sample landmark file and generates an
// avatar from it under build/sample.
func Sample() error {
	mg.Deps(Build)
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return err
	}
	bin := filepath.Join(binDir, binary)
	input := filepath.Join(sampleDir, "sample.json")
	if err := sh.RunV(bin, "sample", "-f", input, "--smile", "--glasses", "--hat"); err != nil {
		return err
	}
	out, err := sh.Output(bin, "--out-dir", filepath.Join(sampleDir, "out"), "generate", input)
	if err != nil {
		return err
	}
	if err := sh.RunV(bin, "inspect", out); err != nil {
		return err
	}
	fmt.Println("sample avatar:", out)
	return nil
}

// Clean removes build outputs.
func Clean() error {
	if err := sh.Rm(binDir); err != nil {
		return err
	}
	return sh.Rm("build")
}
