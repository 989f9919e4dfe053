// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package agent_api

import (
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

const (
	apiVersionName    = "api-version"
	DefaultApiVersion = "v1"
)

type apiVersionPolicy struct {
	apiVersion string
}

// NewApiVersionPolicy ensures the api-version query parameter is set on all requests.
func NewApiVersionPolicy(apiVersion string) policy.Policy {
	if apiVersion == "" {
		apiVersion = DefaultApiVersion
	}

	return &apiVersionPolicy{
		apiVersion: apiVersion,
	}
}

func (p *apiVersionPolicy) Do(req *policy.Request) (*http.Response, error) {
	rawRequest := req.Raw()
	queryString := rawRequest.URL.Query()
	queryString.Set(apiVersionName, p.apiVersion)
	rawRequest.URL.RawQuery = queryString.Encode()

	return req.Next()
}
