package rpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sebamiro/trustly/fault"
)

// Client posts request bodies to the counterparty.
type Client struct {
	HTTP HTTP
	URL  string // scheme://host[:port], without path
}

func (c Client) http() HTTP {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// Post sends body to path with a JSON content type and returns the reply.
//
// Failures are returned as *fault.Error: network failures and 5xx replies
// are connection faults, 4xx replies are data faults. Faults raised after a
// reply was received carry its status and body together with method and
// the request body.
func (c Client) Post(ctx context.Context, path, method string, body []byte) (*Reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fault.Wrap(fault.KindConfiguration, errors.Wrap(err, "rpc, request creation"))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http().Do(req)
	if err != nil {
		return nil, fault.Wrap(fault.KindConnection, errors.Wrap(err, "rpc, request execution"))
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.Wrap(fault.KindConnection, errors.Wrap(err, "rpc, reading response"))
	}

	reply := &Reply{Status: resp.StatusCode, Reason: reason(resp), Body: b}
	switch {
	case resp.StatusCode >= 500:
		return nil, statusFault(fault.KindConnection, reply, method, body)
	case resp.StatusCode >= 400:
		return nil, statusFault(fault.KindData, reply, method, body)
	}
	return reply, nil
}

func statusFault(kind fault.Kind, reply *Reply, method string, body []byte) *fault.Error {
	return ReplyFault(kind, errors.Errorf("the server responded with status %d", reply.Status), reply, method, body)
}

// ReplyFault builds a fault for a received reply. The message appends the
// reply status and body, method and the request body to cause.
func ReplyFault(kind fault.Kind, cause error, reply *Reply, method string, body []byte) *fault.Error {
	return &fault.Error{
		Kind:        kind,
		Message:     fmt.Sprintf("%s -> %d: %s - %s, %s", cause, reply.Status, reply.Body, method, body),
		Status:      reply.Status,
		Body:        string(reply.Body),
		Method:      method,
		RequestBody: string(body),
		Err:         cause,
	}
}

func reason(resp *http.Response) string {
	r := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if r == "" {
		return http.StatusText(resp.StatusCode)
	}
	return r
}
