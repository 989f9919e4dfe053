// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azure

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/azure/foundry-github-agent/internal/pkg/azsdk"
	"github.com/azure/foundry-github-agent/internal/version"
)

// NewClientOptions creates azcore client options with the standard policies for Foundry clients.
// This includes correlation headers and the user agent.
func NewClientOptions(transport policy.Transporter) *azcore.ClientOptions {
	builder := azsdk.DefaultClientOptionsBuilder(version.UserAgent())
	if transport != nil {
		builder.WithTransport(transport)
	}

	return builder.BuildCoreClientOptions()
}
