// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package mockhttp provides an in-memory azcore transport for unit tests.
package mockhttp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// MockHttpClient implements policy.Transporter by matching requests against registered expressions.
type MockHttpClient struct {
	mu          sync.Mutex
	expressions []*HttpExpression
	requests    []*http.Request
}

type HttpExpression struct {
	http        *MockHttpClient
	predicateFn RequestPredicate
	responseFn  RespondFn
	error       error
	times       int
}

type RequestPredicate func(request *http.Request) bool
type RespondFn func(request *http.Request) (*http.Response, error)

func NewMockHttpClient() *MockHttpClient {
	return &MockHttpClient{
		expressions: []*HttpExpression{},
	}
}

// Do matches the first expression whose predicate accepts the request.
// Expressions limited with Times are skipped once used up.
func (c *MockHttpClient) Do(request *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.requests = append(c.requests, request)

	var match *HttpExpression
	for _, expr := range c.expressions {
		if expr.times == 0 {
			continue
		}
		if expr.predicateFn(request) {
			match = expr
			if match.times > 0 {
				match.times--
			}
			break
		}
	}
	c.mu.Unlock()

	if match == nil {
		panic(fmt.Sprintf("No mock found for request: '%s %s'", request.Method, request.URL))
	}

	if match.error != nil {
		return nil, match.error
	}

	return match.responseFn(request)
}

// Requests returns every request seen so far.
func (c *MockHttpClient) Requests() []*http.Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*http.Request(nil), c.requests...)
}

func (c *MockHttpClient) When(predicate RequestPredicate) *HttpExpression {
	c.mu.Lock()
	defer c.mu.Unlock()

	expr := &HttpExpression{
		http:        c,
		predicateFn: predicate,
		times:       -1,
	}

	c.expressions = append(c.expressions, expr)
	return expr
}

// Times limits how many requests the expression answers.
func (e *HttpExpression) Times(n int) *HttpExpression {
	e.times = n
	return e
}

func (e *HttpExpression) RespondFn(responseFn RespondFn) *MockHttpClient {
	e.responseFn = responseFn
	return e.http
}

// RespondJSON answers with statusCode and body marshalled as JSON.
func (e *HttpExpression) RespondJSON(statusCode int, body any) *MockHttpClient {
	return e.RespondFn(func(request *http.Request) (*http.Response, error) {
		return CreateHttpResponseWithBody(request, statusCode, body)
	})
}

func (e *HttpExpression) SetError(err error) *MockHttpClient {
	e.error = err
	return e.http
}

// CreateHttpResponseWithBody builds a JSON response bound to request.
func CreateHttpResponseWithBody(request *http.Request, statusCode int, body any) (*http.Response, error) {
	var payload []byte
	switch v := body.(type) {
	case nil:
	case string:
		payload = []byte(v)
	case []byte:
		payload = v
	default:
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	return &http.Response{
		StatusCode: statusCode,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(payload)),
		Request:    request,
	}, nil
}

// ReadBody returns the request body without consuming it.
func ReadBody(request *http.Request) []byte {
	if request.Body == nil {
		return nil
	}

	body, _ := io.ReadAll(request.Body)
	request.Body = io.NopCloser(bytes.NewReader(body))
	return body
}
