// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/dialaddr/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
