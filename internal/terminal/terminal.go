// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package terminal

import (
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
)

// ForceTTYEnvVar overrides terminal detection when set to a boolean value.
const ForceTTYEnvVar = "FOUNDRY_AGENT_FORCE_TTY"

// IsTerminal returns true if the given file descriptors are attached to a terminal,
// taking into account of environment variables that force TTY behavior.
func IsTerminal(stdoutFd uintptr, stdinFd uintptr) bool {
	if forceTty, err := strconv.ParseBool(os.Getenv(ForceTTYEnvVar)); err == nil {
		return forceTty
	}

	// CI runners never answer prompts.
	if ci, err := strconv.ParseBool(os.Getenv("CI")); err == nil && ci {
		return false
	}

	return isatty.IsTerminal(stdoutFd) && isatty.IsTerminal(stdinFd)
}
