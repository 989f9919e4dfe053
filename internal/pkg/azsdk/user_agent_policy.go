// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azsdk

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

const cUserAgentHeader = "User-Agent"

type userAgentPolicy struct {
	userAgent string
}

// NewUserAgentPolicy creates a policy that prefixes the User-Agent header of every request.
func NewUserAgentPolicy(userAgent string) policy.Policy {
	return &userAgentPolicy{
		userAgent: userAgent,
	}
}

// Sets the custom user-agent string on the underlying request
func (p *userAgentPolicy) Do(req *policy.Request) (*http.Response, error) {
	rawRequest := req.Raw()
	existing := rawRequest.Header.Get(cUserAgentHeader)

	if existing == "" {
		rawRequest.Header.Set(cUserAgentHeader, p.userAgent)
	} else if !strings.Contains(existing, p.userAgent) {
		rawRequest.Header.Set(cUserAgentHeader, fmt.Sprintf("%s %s", p.userAgent, existing))
	}

	return req.Next()
}
