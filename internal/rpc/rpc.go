package rpc

import (
	"net/http"
)

// HTTP is the subset of *http.Client the transport needs.
type HTTP interface {
	Do(req *http.Request) (*http.Response, error)
}

// Reply is the raw answer of the counterparty.
type Reply struct {
	Status int
	Reason string
	Body   []byte
}
