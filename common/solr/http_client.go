// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package solr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/solr-tools/solr-tools/common/log"
)

// ClientOptions holds everything needed to construct a CloudClient.
type ClientOptions struct {
	// Addresses are the host:port pairs of the cluster; the first
	// reachable one is used.
	Addresses []string

	// Collection is the collection the client is bound to.
	Collection string

	// Timeout bounds connection establishment. Zero means no timeout.
	Timeout time.Duration

	// Username and Password enable basic authentication when non-empty.
	Username string
	Password string
}

// CloudClient is a Client speaking the engine's JSON HTTP API, bound to a
// single collection. Calls allocate all per-request state on their own
// stacks, so a CloudClient is safe for concurrent use.
type CloudClient struct {
	baseURL    string
	collection string
	username   string
	password   string
	httpClient *http.Client
}

var _ Client = (*CloudClient)(nil)

// NewCloudClient probes the given addresses in order and returns a client
// bound to the collection on the first host that answers a ping for it. If
// no host does, a ConnectionError is returned and no client is constructed.
func NewCloudClient(opts ClientOptions) (*CloudClient, error) {
	if opts.Collection == "" {
		return nil, &ConnectionError{
			Collection: opts.Collection,
			Err:        errors.New("no collection specified"),
		}
	}
	if len(opts.Addresses) == 0 {
		return nil, &ConnectionError{
			Collection: opts.Collection,
			Err:        errors.New("no hosts specified"),
		}
	}

	client := &CloudClient{
		collection: opts.Collection,
		username:   opts.Username,
		password:   opts.Password,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: opts.Timeout}).DialContext,
			},
		},
	}

	var lastErr error
	for _, addr := range opts.Addresses {
		client.baseURL = fmt.Sprintf("http://%s/solr/%s", addr, opts.Collection)
		if err := client.ping(); err != nil {
			log.Logvf(log.Info, "host %v unusable for collection %v: %v",
				addr, opts.Collection, err)
			lastErr = err
			continue
		}
		return client, nil
	}

	return nil, &ConnectionError{Collection: opts.Collection, Err: lastErr}
}

// BaseURL returns the collection endpoint the client settled on.
func (c *CloudClient) BaseURL() string {
	return c.baseURL
}

// Collection returns the collection the client is bound to.
func (c *CloudClient) Collection() string {
	return c.collection
}

// ping verifies that the collection answers on the current base URL.
func (c *CloudClient) ping() error {
	body, err := c.do("GET", c.baseURL+"/admin/ping?wt=json", nil)
	if err != nil {
		return err
	}

	var pingResponse struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &pingResponse); err != nil {
		return errors.Wrap(err, "error parsing ping response")
	}
	if pingResponse.Status != "OK" {
		return errors.Errorf("ping returned status %q", pingResponse.Status)
	}
	return nil
}

// selectResponse mirrors the wire format of a /select response.
type selectResponse struct {
	Response struct {
		NumFound int64      `json:"numFound"`
		Docs     []Document `json:"docs"`
	} `json:"response"`
	NextCursorMark string `json:"nextCursorMark"`
}

// Query runs one page fetch against the collection's /select handler.
func (c *CloudClient) Query(query Query) (*Results, error) {
	params := url.Values{}
	params.Set("wt", "json")
	if query.Q != "" {
		params.Set("q", query.Q)
	} else {
		params.Set("q", "*:*")
	}
	for _, fq := range query.FilterQueries {
		params.Add("fq", fq)
	}
	if query.PartitionKeys != "" {
		params.Set("partitionKeys", query.PartitionKeys)
	}
	if query.Sort != "" {
		params.Set("sort", query.Sort)
	}
	if query.Rows > 0 {
		params.Set("rows", strconv.Itoa(query.Rows))
	}
	if query.CursorMark != "" {
		params.Set("cursorMark", query.CursorMark)
	}

	body, err := c.do("GET", c.baseURL+"/select?"+params.Encode(), nil)
	if err != nil {
		return nil, &QueryError{Collection: c.collection, Err: err}
	}

	parsed := selectResponse{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &QueryError{
			Collection: c.collection,
			Err:        errors.Wrap(err, "error parsing query response"),
		}
	}

	return &Results{
		Docs:           parsed.Response.Docs,
		NumFound:       parsed.Response.NumFound,
		NextCursorMark: parsed.NextCursorMark,
	}, nil
}

// Add submits a single document to the collection's /update handler. The
// engine replaces any existing document with the same unique key.
func (c *CloudClient) Add(doc Document) error {
	payload, err := json.Marshal([]Document{doc})
	if err != nil {
		return &WriteError{
			Collection: c.collection,
			Err:        errors.Wrap(err, "error serializing document"),
		}
	}

	if _, err := c.do("POST", c.baseURL+"/update", payload); err != nil {
		return &WriteError{Collection: c.collection, Err: err}
	}
	return nil
}

// Commit makes all pending updates on the collection durable and visible.
func (c *CloudClient) Commit() error {
	if _, err := c.do("POST", c.baseURL+"/update", []byte(`{"commit":{}}`)); err != nil {
		return &CommitError{Collection: c.collection, Err: err}
	}
	return nil
}

// Close releases the client's idle connections. The client must not be used
// after Close.
func (c *CloudClient) Close() {
	c.httpClient.CloseIdleConnections()
}

// errorResponse mirrors the wire format the engine uses to report errors.
type errorResponse struct {
	Error struct {
		Msg  string `json:"msg"`
		Code int    `json:"code"`
	} `json:"error"`
}

// do runs one HTTP round trip and returns the response body, converting
// non-200 responses into errors carrying the engine's message.
func (c *CloudClient) do(method, rawURL string, payload []byte) ([]byte, error) {
	var reqBody *bytes.Reader
	if payload == nil {
		reqBody = bytes.NewReader(nil)
	} else {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, rawURL, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading response body")
	}

	if resp.StatusCode != http.StatusOK {
		parsed := errorResponse{}
		if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Msg != "" {
			return nil, errors.Errorf("server returned %v: %v",
				resp.StatusCode, parsed.Error.Msg)
		}
		return nil, errors.Errorf("server returned %v", resp.StatusCode)
	}

	return body, nil
}
