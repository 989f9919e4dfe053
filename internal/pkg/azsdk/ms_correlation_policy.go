// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azsdk

import (
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"go.opentelemetry.io/otel/trace"
)

// See https://github.com/Azure/azure-resource-manager-rpc/blob/master/v1.0/common-api-details.md#client-request-headers
const MsCorrelationIdHeader = "x-ms-correlation-request-id"

// msCorrelationPolicy sets the Microsoft correlation ID header from the trace context of each request.
type msCorrelationPolicy struct {
}

// NewMsCorrelationPolicy creates a policy that sets Microsoft correlation ID headers on HTTP requests.
//
// Correlation IDs are taken from the trace context of the request. Requests without a trace are left untouched.
func NewMsCorrelationPolicy() policy.Policy {
	return &msCorrelationPolicy{}
}

func (p *msCorrelationPolicy) Do(req *policy.Request) (*http.Response, error) {
	rawRequest := req.Raw()

	spanCtx := trace.SpanContextFromContext(rawRequest.Context())
	if spanCtx.HasTraceID() {
		rawRequest.Header.Set(MsCorrelationIdHeader, spanCtx.TraceID().String())
	}

	return req.Next()
}
