package message

import (
	"github.com/sebamiro/trustly/fault"
	"github.com/sebamiro/trustly/payload"
)

// Response is the reply to a Request. The reply is either a success,
//
//	{"version": "1.1", "result": {"method", "uuid", "signature", "data"}}
//
// or an error whose signed part sits one level deeper,
//
//	{"version": "1.1", "error": {"name", "code", "message",
//	 "error": {"method", "uuid", "signature", "data": {"code", "message"}}}}
type Response struct {
	status  int
	reason  string
	payload *payload.Payload
	result  []string // path of the signed branch
}

// ParseResponse parses a reply body received with the given HTTP status
// and reason phrase.
func ParseResponse(status int, reason string, body []byte) (*Response, error) {
	v, err := payload.Parse(body)
	if err != nil {
		return nil, fault.Newf(fault.KindData, "Could not parse response body: %v", err)
	}
	return NewResponse(status, reason, v)
}

// NewResponse builds a Response over an already decoded body. It fails
// with a data fault when the body holds neither a result nor an error
// branch, and with a version fault when the version is not "1.1".
func NewResponse(status int, reason string, body payload.Value) (*Response, error) {
	r := &Response{status: status, reason: reason, payload: payload.FromValue(body)}

	switch {
	case r.payload.Get("result").IsMap():
		r.result = []string{"result"}
	case r.payload.Get("error", "error").IsMap():
		r.result = []string{"error", "error"}
	default:
		return nil, fault.Newf(fault.KindData, "No result or error in response %s", describe(body))
	}

	if v, _ := r.payload.Get("version").AsString(); v != Version {
		return nil, fault.New(fault.KindVersion, "JSON RPC Version is not supported")
	}
	return r, nil
}

func describe(v payload.Value) string {
	b, err := v.MarshalJSON()
	if err != nil {
		return v.Text()
	}
	return string(b)
}

// Status returns the HTTP status code the reply arrived with.
func (r *Response) Status() int { return r.status }

// Reason returns the HTTP reason phrase the reply arrived with.
func (r *Response) Reason() string { return r.reason }

// IsSuccess reports whether the reply carries a result branch.
func (r *Response) IsSuccess() bool { return !r.payload.Get("result").IsNull() }

// IsError reports whether the reply carries an error branch.
func (r *Response) IsError() bool { return !r.payload.Get("error").IsNull() }

// ErrorCode returns the error code of an error reply, or null.
func (r *Response) ErrorCode() payload.Value {
	if !r.IsError() {
		return payload.Null()
	}
	return r.at("data", "code")
}

// ErrorMessage returns the error message of an error reply, or "".
func (r *Response) ErrorMessage() string {
	if !r.IsError() {
		return ""
	}
	return r.at("data", "message").Text()
}

// Result returns the signed branch: result, or error.error.
func (r *Response) Result() payload.Value { return r.at() }

// Data returns the data of the signed branch.
func (r *Response) Data() payload.Value { return r.at("data") }

// DataAt returns data.<name> of the signed branch.
func (r *Response) DataAt(name string) payload.Value { return r.at("data", name) }

// UUID returns the uuid of the signed branch.
func (r *Response) UUID() string { return r.at("uuid").Text() }

// Method returns the method of the signed branch.
func (r *Response) Method() string { return r.at("method").Text() }

// Signature returns the signature of the signed branch.
func (r *Response) Signature() string { return r.at("signature").Text() }

// Payload returns a copy of the whole reply tree.
func (r *Response) Payload() payload.Value { return r.payload.Value() }

// MarshalJSON implements json.Marshaler.
func (r *Response) MarshalJSON() ([]byte, error) { return r.payload.MarshalJSON() }

func (r *Response) at(path ...string) payload.Value {
	full := make([]string, 0, len(r.result)+len(path))
	full = append(full, r.result...)
	full = append(full, path...)
	return r.payload.Get(full...)
}
