// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, race).
type Test mg.Namespace

// All runs every package's tests verbosely.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs the tests quickly, without verbose output.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs the tests with the race detector. The provisioner and the
// repository write lock are exercised by concurrent tests.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./internal/...", "./pkg/...")
}
