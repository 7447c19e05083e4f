// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

package main

import "github.com/magefile/mage/sh"

const binMockgen = "mockgen"

// mockTargets lists source files whose interfaces get gomock doubles.
var mockTargets = []struct {
	source string
	dest   string
	pkg    string
}{
	{"internal/provision/provisioner.go", "internal/provision/mocks/mocks.go", "mocks"},
}

// Generate regenerates gomock doubles with mockgen.
func Generate() error {
	for _, m := range mockTargets {
		if err := sh.RunV(binMockgen, "-source", m.source, "-destination", m.dest, "-package", m.pkg); err != nil {
			return err
		}
	}
	return nil
}
