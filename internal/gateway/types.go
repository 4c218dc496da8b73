package gateway

// MonitorStatus is the response from the hub's health endpoint
type MonitorStatus struct {
	Status string `json:"status"`
}

// Ready reports whether the hub considers itself operational
func (m MonitorStatus) Ready() bool {
	return m.Status == "READY"
}

// PaymentMethod describes one method available for a currency
type PaymentMethod struct {
	PaymentMethod string `json:"paymentMethod"`
	CurrencyCode  string `json:"currencyCode"`
	AccountID     string `json:"accountId,omitempty"`
}

type paymentMethodsResponse struct {
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
}

// Card holds the test card data submitted during handle creation
type Card struct {
	CardNum    string     `json:"cardNum"`
	CardExpiry CardExpiry `json:"cardExpiry"`
	CVV        string     `json:"cvv"`
	HolderName string     `json:"holderName"`
}

type CardExpiry struct {
	Month string `json:"month"`
	Year  string `json:"year"`
}

// Profile is the customer profile attached to a handle
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// BillingDetails is the billing address attached to a handle
type BillingDetails struct {
	NickName string `json:"nickName"`
	Street   string `json:"street"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
	State    string `json:"state"`
}

// ReturnLink is a redirect target the hub calls back after processing
type ReturnLink struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method"`
}

// HandleRequest is the payload for POST /paymenthandles
type HandleRequest struct {
	MerchantRefNum  string         `json:"merchantRefNum"`
	TransactionType string         `json:"transactionType"`
	Amount          int64          `json:"amount"`
	AccountID       string         `json:"accountId"`
	Card            Card           `json:"card"`
	Profile         Profile        `json:"profile"`
	PaymentType     string         `json:"paymentType"`
	CurrencyCode    string         `json:"currencyCode"`
	CustomerIP      string         `json:"customerIp"`
	BillingDetails  BillingDetails `json:"billingDetails"`
	ReturnLinks     []ReturnLink   `json:"returnLinks"`
}

// Handle is the response from handle creation
type Handle struct {
	ID                 string `json:"id"`
	PaymentHandleToken string `json:"paymentHandleToken"`
	Status             string `json:"status"`
}

// PaymentRequest is the payload for POST /payments
type PaymentRequest struct {
	MerchantRefNum     string `json:"merchantRefNum"`
	Amount             int64  `json:"amount"`
	CurrencyCode       string `json:"currencyCode"`
	PaymentHandleToken string `json:"paymentHandleToken"`
}

// Settlement is one settlement attached to a payment
type Settlement struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

// Payment is the remote payment resource
type Payment struct {
	ID             string       `json:"id"`
	MerchantRefNum string       `json:"merchantRefNum"`
	Amount         int64        `json:"amount"`
	CurrencyCode   string       `json:"currencyCode"`
	Status         string       `json:"status"`
	Settlements    []Settlement `json:"settlements,omitempty"`
}

// SettlementRef returns the first settlement identifier, if any
func (p *Payment) SettlementRef() string {
	if len(p.Settlements) == 0 {
		return ""
	}
	return p.Settlements[0].ID
}

type statusUpdate struct {
	Status string `json:"status"`
}

// RefundRequest is the payload for POST /settlements/{id}/refunds
type RefundRequest struct {
	MerchantRefNum string `json:"merchantRefNum"`
	Amount         int64  `json:"amount"`
}

// Refund is the remote refund resource
type Refund struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}
