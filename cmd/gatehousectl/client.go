package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gatehouse/gatehouse/pkg/api"
)

// client is a thin JSON wrapper over the server's management API.
type client struct {
	base string
	http *http.Client
}

func newClient() *client {
	return &client{
		base: fmt.Sprintf("http://%s:%d/api/v1", serverHost, serverPort),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// do issues one request. A non-2xx reply is decoded as the uniform error
// body and surfaced as an error.
func (c *client) do(method, path string, query url.Values, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		var errBody api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil && errBody.Message != "" {
			return fmt.Errorf("server returned %s: %s", resp.Status, errBody.Message)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// printJSON renders the server's reply for human consumption.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseAttrs converts repeated "key:val1,val2" arguments into an
// attribute map, merging values for repeated keys.
func parseAttrs(args []string) (map[string][]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	attrs := make(map[string][]string, len(args))
	for _, arg := range args {
		key, rest, ok := strings.Cut(arg, ":")
		if !ok || key == "" || rest == "" {
			return nil, fmt.Errorf("attribute %q must have the form key:val1,val2", arg)
		}
		attrs[key] = append(attrs[key], strings.Split(rest, ",")...)
	}
	return attrs, nil
}

// parseMembers converts repeated "name:typestr" arguments into member
// payloads.
func parseMembers(args []string) ([]api.GroupMemberPayload, error) {
	members := make([]api.GroupMemberPayload, 0, len(args))
	for _, arg := range args {
		name, typestr, ok := strings.Cut(arg, ":")
		if !ok || name == "" || typestr == "" {
			return nil, fmt.Errorf("member %q must have the form name:typestr", arg)
		}
		members = append(members, api.GroupMemberPayload{Name: name, Typestr: typestr})
	}
	return members, nil
}
