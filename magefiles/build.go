// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

// Package main provides build targets for the padron project using Mage.
//
// Usage:
//
//	mage build          Compile padron binary to bin/
//	mage test:all       Run all tests
//	mage test:unit      Run tests without the race detector
//	mage test:race      Run all tests with the race detector
//	mage lint           Run golangci-lint
//	mage generate       Regenerate mocks
//	mage clean          Remove build artifacts
//	mage install        Install padron to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "padron"
	binaryDir  = "bin"
	cmdDir     = "./cmd/padron"
	modulePath = "github.com/mesh-intelligence/padron"
)

// ldflags stamps the version from PADRON_VERSION when set.
func ldflags() string {
	v := os.Getenv("PADRON_VERSION")
	if v == "" {
		return ""
	}
	return "-X " + modulePath + "/internal/cli.Version=" + v
}

// Build compiles the padron binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
