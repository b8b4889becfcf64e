package trustly

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sebamiro/trustly/fault"
	"github.com/sebamiro/trustly/message"
	"github.com/sebamiro/trustly/payload"
)

// Operation describes one API method: which arguments go into Data, which
// into Data.Attributes, and which must be present.
type Operation struct {
	Method     string
	Data       []string
	Attributes []string
	Required   []string
}

// Methods
var (
	Deposit = Operation{
		Method: "Deposit",
		Data:   []string{"NotificationURL", "EndUserID", "MessageID"},
		Attributes: []string{
			"Locale", "Country", "Currency", "SuggestedMinAmount", "SuggestedMaxAmount", "Amount",
			"IP", "SuccessURL", "FailURL", "TemplateURL", "URLTarget", "MobilePhone", "ShopperStatement",
			"Firstname", "Lastname", "NationalIdentificationNumber", "Email", "AccountID",
			"UnchangeableNationalIdentificationNumber", "ShippingAddressCountry",
			"ShippingAddressPostalCode", "ShippingAddressLine1", "ShippingAddressLine2",
			"ShippingAddress", "RequestDirectDebitMandate", "ChargeAccountID", "QuickDeposit",
			"URLScheme", "ExternalReference", "PSPMerchant", "PSPMerchantURL",
			"MerchantCategoryCode", "RecipientInformation",
		},
		Required: []string{
			"Locale", "Country", "Currency", "SuccessURL", "FailURL", "NotificationURL", "Amount",
			"EndUserID", "MessageID", "Firstname", "Lastname", "ShopperStatement",
		},
	}

	Refund = Operation{
		Method:     "Refund",
		Data:       []string{"OrderId", "Amount", "Currency"},
		Attributes: []string{"ExternalReference"},
		Required:   []string{"OrderId", "Amount", "Currency"},
	}

	Void = Operation{
		Method:   "Void",
		Data:     []string{"OrderId"},
		Required: []string{"OrderId"},
	}

	SelectAccount = Operation{
		Method: "SelectAccount",
		Data:   []string{"NotificationURL", "EndUserID", "MessageID"},
		Attributes: []string{
			"Locale", "Country", "Firstname", "Lastname", "SuccessURL", "FailURL", "Email", "IP",
			"RequestDirectDebitMandate", "TemplateURL", "URLTarget", "MobilePhone",
			"NationalIdentificationNumber", "UnchangeableNationalIdentificationNumber",
			"ShopperStatement", "DateOfBirth", "URLScheme", "PSPMerchant", "PSPMerchantURL",
			"MerchantCategoryCode",
		},
		Required: []string{
			"Locale", "Country", "SuccessURL", "FailURL", "NotificationURL", "EndUserID", "MessageID",
			"Firstname", "Lastname",
		},
	}

	AccountPayout = Operation{
		Method: "AccountPayout",
		Data:   []string{"NotificationURL", "AccountID", "EndUserID", "MessageID", "Amount", "Currency"},
		Attributes: []string{
			"ShopperStatement", "PSPMerchant", "PSPMerchantURL",
			"ExternalReference", "MerchantCategoryCode", "SenderInformation",
		},
		Required: []string{
			"NotificationURL", "AccountID", "EndUserID", "MessageID", "Amount", "Currency",
			"ShopperStatement",
		},
	}

	RegisterAccount = Operation{
		Method: "RegisterAccount",
		Data:   []string{"EndUserID", "ClearingHouse", "BankNumber", "AccountNumber", "Firstname", "Lastname"},
		Attributes: []string{
			"DateOfBirth", "MobilePhone", "NationalIdentificationNumber", "AddressCountry",
			"AddressPostalCode", "AddressCity", "AddressLine1", "AddressLine2", "Address", "Email",
		},
		Required: []string{"EndUserID", "ClearingHouse", "BankNumber", "AccountNumber", "Firstname", "Lastname"},
	}

	GetWithdrawals = Operation{
		Method:   "GetWithdrawals",
		Data:     []string{"OrderId"},
		Required: []string{"OrderId"},
	}
)

var operations = map[string]Operation{}

func init() {
	for _, op := range []Operation{Deposit, Refund, Void, SelectAccount, AccountPayout, RegisterAccount, GetWithdrawals} {
		operations[op.Method] = op
	}
}

// LookupOperation returns the catalogue entry for method.
func LookupOperation(method string) (Operation, bool) {
	op, ok := operations[method]
	return op, ok
}

// OperationNames returns the methods of the catalogue in ascending order.
func OperationNames() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Args are the named arguments of a call. Values are plain Go values or
// payload.Value; a nil value counts as absent. A decimal.Decimal is sent
// as a string with two decimals, the format amounts are expected in.
type Args map[string]any

// Request builds the request for args. It fails with a data fault naming
// every missing required argument, in the declared order.
func (op Operation) Request(args Args) (*message.Request, error) {
	var missing []string
	for _, name := range op.Required {
		if absent(args[name]) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fault.New(fault.KindData, "Required data is missing: "+strings.Join(missing, "; "))
	}

	data, err := pick(args, op.Data)
	if err != nil {
		return nil, err
	}
	attributes := payload.Null()
	if len(op.Attributes) > 0 {
		if attributes, err = pick(args, op.Attributes); err != nil {
			return nil, err
		}
	}
	return message.NewRequest(op.Method, data, attributes)
}

// absent reports whether x converts to null. Values that fail to convert
// are present and rejected later by pick.
func absent(x any) bool {
	v, err := payload.FromAny(x)
	return err == nil && v.IsNull()
}

func pick(args Args, names []string) (payload.Value, error) {
	m := make(map[string]payload.Value, len(names))
	for _, name := range names {
		raw, ok := args[name]
		if !ok {
			continue
		}
		if d, ok := raw.(decimal.Decimal); ok {
			m[name] = payload.String(d.StringFixed(2))
			continue
		}
		v, err := payload.FromAny(raw)
		if err != nil {
			return payload.Null(), fault.Newf(fault.KindData, "Invalid value for %s: %v", name, err)
		}
		m[name] = v
	}
	return payload.Map(m), nil
}

// Invoke builds the request of op from args and calls it.
func (c *Client) Invoke(ctx context.Context, op Operation, args Args) (*message.Response, error) {
	req, err := op.Request(args)
	if err != nil {
		c.metrics.observeCall(op.Method, nil, err)
		return nil, err
	}
	return c.Call(ctx, req)
}

// Deposit starts a deposit. The response data carries the URL to send the
// end user to.
func (c *Client) Deposit(ctx context.Context, args Args) (*message.Response, error) {
	return c.Invoke(ctx, Deposit, args)
}

// Refund refunds an order, fully or in part.
func (c *Client) Refund(ctx context.Context, args Args) (*message.Response, error) {
	return c.Invoke(ctx, Refund, args)
}

// Void cancels an order that has not been settled.
func (c *Client) Void(ctx context.Context, args Args) (*message.Response, error) {
	return c.Invoke(ctx, Void, args)
}

// SelectAccount lets the end user pick and verify a bank account.
func (c *Client) SelectAccount(ctx context.Context, args Args) (*message.Response, error) {
	return c.Invoke(ctx, SelectAccount, args)
}

// AccountPayout pays out to a previously registered account.
func (c *Client) AccountPayout(ctx context.Context, args Args) (*message.Response, error) {
	return c.Invoke(ctx, AccountPayout, args)
}

// RegisterAccount registers a bank account for an end user.
func (c *Client) RegisterAccount(ctx context.Context, args Args) (*message.Response, error) {
	return c.Invoke(ctx, RegisterAccount, args)
}

// GetWithdrawals returns the withdrawals of an order.
func (c *Client) GetWithdrawals(ctx context.Context, args Args) (*message.Response, error) {
	return c.Invoke(ctx, GetWithdrawals, args)
}
