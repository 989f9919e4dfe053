// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package version

var (
	// Populated at build time
	Version   = "dev" // Default value for development builds
	Commit    = "none"
	BuildDate = "unknown"
)

// UserAgent is sent on every outbound request.
func UserAgent() string {
	return "foundry-github-agent/" + Version
}
