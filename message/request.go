// Package message provides views over the four payloads of the protocol:
// the outbound Request, the inbound Response, the inbound
// NotificationRequest and the outbound NotificationResponse.
//
// Each message owns exactly one payload.Payload and never shares it. Fields
// are read and written through accessors that address fixed paths within
// that payload.
package message

import (
	"github.com/sebamiro/trustly/fault"
	"github.com/sebamiro/trustly/payload"
)

// Version is the only protocol version accepted on any payload.
const Version = "1.1"

// Request is an outbound call:
//
//	{"method": ..., "version": "1.1",
//	 "params": {"UUID": ..., "Signature": ..., "Data": {..., "Attributes": {...}}}}
type Request struct {
	payload *payload.Payload
}

// NewRequest builds a Request for method.
//
// A null data and null attributes leave Data as an empty mapping. A null
// data with attributes makes Data a mapping holding only Attributes.
// Otherwise data is vacuumed and stored as Data; when attributes are given
// data must be a mapping, or construction fails with a data fault.
// Attributes are vacuumed and stored under Data.Attributes unless data
// already defines Attributes.
func NewRequest(method string, data, attributes payload.Value) (*Request, error) {
	r := &Request{payload: payload.New()}
	r.payload.Set(payload.String(Version), "version")
	r.payload.Set(payload.Map(nil), "params")
	r.SetMethod(method)

	withAttributes := !attributes.IsNull()
	switch {
	case data.IsNull():
		r.payload.Set(payload.Map(nil), "params", "Data")
	case withAttributes && !data.IsMap():
		return nil, fault.Newf(fault.KindData, "Data must be a mapping if attributes are provided, got %s", data.Kind())
	default:
		d := payload.Vacuum(data)
		if d.IsNull() && (withAttributes || data.IsMap()) {
			d = payload.Map(nil)
		}
		r.payload.Set(d, "params", "Data")
	}

	if withAttributes && !r.payload.Has("params", "Data", "Attributes") {
		if a := payload.Vacuum(attributes); !a.IsNull() {
			r.payload.Set(a, "params", "Data", "Attributes")
		}
	}
	return r, nil
}

// Method returns the called method.
func (r *Request) Method() string { return r.payload.String("method") }

// SetMethod sets the called method.
func (r *Request) SetMethod(method string) {
	r.payload.Set(payload.String(method), "method")
}

// Version returns the protocol version of the request.
func (r *Request) Version() string { return r.payload.String("version") }

// Data returns params.Data.
func (r *Request) Data() payload.Value { return r.payload.Get("params", "Data") }

// DataAt returns params.Data.<name>.
func (r *Request) DataAt(name string) payload.Value {
	return r.payload.Get("params", "Data", name)
}

// UpdateDataAt sets params.Data.<name>.
func (r *Request) UpdateDataAt(name string, v payload.Value) {
	r.payload.Set(v, "params", "Data", name)
}

// Attributes returns params.Data.Attributes.
func (r *Request) Attributes() payload.Value {
	return r.payload.Get("params", "Data", "Attributes")
}

// AttributeAt returns params.Data.Attributes.<name>.
func (r *Request) AttributeAt(name string) payload.Value {
	return r.payload.Get("params", "Data", "Attributes", name)
}

// UpdateAttributeAt sets params.Data.Attributes.<name>.
func (r *Request) UpdateAttributeAt(name string, v payload.Value) {
	r.payload.Set(v, "params", "Data", "Attributes", name)
}

// UUID returns params.UUID, or "" when unset.
func (r *Request) UUID() string { return r.payload.String("params", "UUID") }

// SetUUID sets params.UUID.
func (r *Request) SetUUID(uuid string) {
	r.payload.Set(payload.String(uuid), "params", "UUID")
}

// Signature returns params.Signature, or "" when unset.
func (r *Request) Signature() string { return r.payload.String("params", "Signature") }

// SetSignature sets params.Signature.
func (r *Request) SetSignature(sig string) {
	r.payload.Set(payload.String(sig), "params", "Signature")
}

// Payload returns a copy of the whole request tree.
func (r *Request) Payload() payload.Value { return r.payload.Value() }

// MarshalJSON implements json.Marshaler.
func (r *Request) MarshalJSON() ([]byte, error) { return r.payload.MarshalJSON() }
