// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package agent_api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

var redactedHeaders = map[string]bool{
	"Authorization": true,
	"Set-Cookie":    true,
}

// loggingPolicy is a custom pipeline policy that logs Foundry HTTP requests and responses
type loggingPolicy struct {
	mu  sync.Mutex
	out io.Writer
}

// NewLoggingPolicy creates a new logging policy that writes to out
func NewLoggingPolicy(out io.Writer) policy.Policy {
	return &loggingPolicy{out: out}
}

// Do implements the policy.Policy interface
func (p *loggingPolicy) Do(req *policy.Request) (*http.Response, error) {
	p.logRequest(req)

	resp, err := req.Next()
	if err != nil {
		p.logError(err)
		return resp, err
	}

	p.logResponse(resp)

	return resp, nil
}

func (p *loggingPolicy) logRequest(req *policy.Request) {
	if p.out == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "\n=== REQUEST [%s] ===\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(p.out, "%s %s\n", req.Raw().Method, req.Raw().URL.String())

	if req.Raw().Body == nil {
		fmt.Fprintf(p.out, "Body: (none)\n")
		return
	}

	body, err := io.ReadAll(req.Raw().Body)
	// Always restore the body, even if read failed (restore what we got)
	req.Raw().Body = io.NopCloser(bytes.NewReader(body))

	if err != nil {
		fmt.Fprintf(p.out, "Body: (error reading: %v)\n", err)
		return
	}

	p.writeBody(body, "\n")
}

func (p *loggingPolicy) logResponse(resp *http.Response) {
	if p.out == nil || resp == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "\n=== RESPONSE [%s] ===\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(p.out, "Status Code: %d\n", resp.StatusCode)

	fmt.Fprintf(p.out, "Headers:\n")
	for _, key := range slices.Sorted(maps.Keys(resp.Header)) {
		for _, value := range resp.Header[key] {
			if redactedHeaders[http.CanonicalHeaderKey(key)] {
				value = "REDACTED"
			}
			fmt.Fprintf(p.out, "  %s: %s\n", key, value)
		}
	}

	if resp.Body == nil {
		fmt.Fprintf(p.out, "Body: (none)\n\n")
		return
	}

	body, err := io.ReadAll(resp.Body)
	// Always restore the body, even if read failed (restore what we got)
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if err != nil {
		fmt.Fprintf(p.out, "Body: (error reading: %v)\n\n", err)
		return
	}

	p.writeBody(body, "\n\n")
}

func (p *loggingPolicy) writeBody(body []byte, terminator string) {
	if len(body) == 0 {
		fmt.Fprintf(p.out, "Body: (empty)%s", terminator)
		return
	}

	fmt.Fprintf(p.out, "Body:\n")
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err == nil {
		fmt.Fprintf(p.out, "%s%s", pretty.String(), terminator)
	} else {
		fmt.Fprintf(p.out, "%s%s", strings.TrimSpace(string(body)), terminator)
	}
}

func (p *loggingPolicy) logError(err error) {
	if p.out == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "\n=== ERROR [%s] ===\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(p.out, "Error: %v\n\n", err)
}
