package message

import (
	"github.com/shopspring/decimal"

	"github.com/sebamiro/trustly/fault"
	"github.com/sebamiro/trustly/payload"
)

// NotificationRequest is an inbound notification pushed by the
// counterparty:
//
//	{"method": ..., "version": "1.1",
//	 "params": {"uuid": ..., "signature": ..., "data": {..., "attributes": {...}}}}
type NotificationRequest struct {
	payload *payload.Payload
}

// ParseNotificationRequest parses a raw notification body.
func ParseNotificationRequest(body []byte) (*NotificationRequest, error) {
	v, err := payload.Parse(body)
	if err != nil {
		return nil, fault.Wrap(fault.KindData, err)
	}
	return newNotificationRequest(v)
}

// NewNotificationRequest builds a NotificationRequest from either a raw
// body (string, []byte) or an already decoded mapping. Mapping keys of any
// type are stringified recursively.
func NewNotificationRequest(body any) (*NotificationRequest, error) {
	switch b := body.(type) {
	case []byte:
		return ParseNotificationRequest(b)
	case string:
		return ParseNotificationRequest([]byte(b))
	}
	v, err := payload.FromAny(body)
	if err != nil {
		return nil, fault.Wrap(fault.KindData, err)
	}
	return newNotificationRequest(v)
}

func newNotificationRequest(v payload.Value) (*NotificationRequest, error) {
	if !v.IsMap() {
		return nil, fault.Newf(fault.KindData, "notification body must be a mapping, got %s", v.Kind())
	}
	n := &NotificationRequest{payload: payload.FromValue(v)}
	if version := n.payload.Get("version"); version.Kind() != payload.KindString || version.Text() != Version {
		return nil, fault.Newf(fault.KindVersion, "JSON RPC Version %s is not supported", version.Text())
	}
	return n, nil
}

// Version returns the protocol version.
func (n *NotificationRequest) Version() string { return n.payload.Get("version").Text() }

// Method returns the notification method, e.g. "credit" or "pending".
func (n *NotificationRequest) Method() string { return n.payload.Get("method").Text() }

// Signature returns params.signature.
func (n *NotificationRequest) Signature() string { return n.payload.Get("params", "signature").Text() }

// UUID returns params.uuid.
func (n *NotificationRequest) UUID() string { return n.payload.Get("params", "uuid").Text() }

// Data returns params.data.
func (n *NotificationRequest) Data() payload.Value { return n.payload.Get("params", "data") }

// DataAt returns params.data.<key>.
func (n *NotificationRequest) DataAt(key string) payload.Value {
	return n.payload.Get("params", "data", key)
}

// AttributeAt returns params.data.attributes.<key>.
func (n *NotificationRequest) AttributeAt(key string) payload.Value {
	return n.payload.Get("params", "data", "attributes", key)
}

// Amount parses params.data.amount. It reports false when the
// notification carries no amount or the amount is not a decimal number.
func (n *NotificationRequest) Amount() (decimal.Decimal, bool) {
	v := n.DataAt("amount")
	if v.IsNull() {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v.Text())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Payload returns a copy of the whole notification tree.
func (n *NotificationRequest) Payload() payload.Value { return n.payload.Value() }

// NotificationResponse acknowledges a NotificationRequest:
//
//	{"version": "1.1",
//	 "result": {"method", "uuid", "data": {"status": "OK"|"FAILED"}, "signature"}}
//
// The caller signs it over (method, uuid, data) before sending it back.
type NotificationResponse struct {
	payload *payload.Payload
}

// Acknowledgment statuses.
const (
	StatusOK     = "OK"
	StatusFailed = "FAILED"
)

// NewNotificationResponse builds the acknowledgment of req.
func NewNotificationResponse(req *NotificationRequest, success bool) *NotificationResponse {
	r := &NotificationResponse{payload: payload.New()}
	r.payload.Set(payload.String(Version), "version")
	if req != nil {
		if uuid := req.UUID(); uuid != "" {
			r.SetUUID(uuid)
		}
		if method := req.Method(); method != "" {
			r.SetMethod(method)
		}
	}
	status := StatusFailed
	if success {
		status = StatusOK
	}
	r.payload.Set(payload.String(status), "result", "data", "status")
	return r
}

// ParseNotificationResponse parses an acknowledgment as written by
// NotificationResponse.MarshalJSON.
func ParseNotificationResponse(body []byte) (*NotificationResponse, error) {
	v, err := payload.Parse(body)
	if err != nil {
		return nil, fault.Wrap(fault.KindData, err)
	}
	if !v.IsMap() {
		return nil, fault.Newf(fault.KindData, "acknowledgment must be a mapping, got %s", v.Kind())
	}
	r := &NotificationResponse{payload: payload.FromValue(v)}
	if version := r.payload.Get("version"); version.Kind() != payload.KindString || version.Text() != Version {
		return nil, fault.Newf(fault.KindVersion, "JSON RPC Version %s is not supported", version.Text())
	}
	return r, nil
}

// Version returns the protocol version.
func (r *NotificationResponse) Version() string { return r.payload.String("version") }

// Method returns result.method.
func (r *NotificationResponse) Method() string { return r.payload.String("result", "method") }

// SetMethod sets result.method.
func (r *NotificationResponse) SetMethod(method string) {
	r.payload.Set(payload.String(method), "result", "method")
}

// UUID returns result.uuid.
func (r *NotificationResponse) UUID() string { return r.payload.String("result", "uuid") }

// SetUUID sets result.uuid.
func (r *NotificationResponse) SetUUID(uuid string) {
	r.payload.Set(payload.String(uuid), "result", "uuid")
}

// Signature returns result.signature.
func (r *NotificationResponse) Signature() string { return r.payload.String("result", "signature") }

// SetSignature sets result.signature.
func (r *NotificationResponse) SetSignature(sig string) {
	r.payload.Set(payload.String(sig), "result", "signature")
}

// Status returns result.data.status.
func (r *NotificationResponse) Status() string { return r.payload.String("result", "data", "status") }

// Data returns result.data.
func (r *NotificationResponse) Data() payload.Value { return r.payload.Get("result", "data") }

// Payload returns a copy of the whole acknowledgment tree.
func (r *NotificationResponse) Payload() payload.Value { return r.payload.Value() }

// MarshalJSON implements json.Marshaler.
func (r *NotificationResponse) MarshalJSON() ([]byte, error) { return r.payload.MarshalJSON() }
