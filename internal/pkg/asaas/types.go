package asaas

// Subscription is the provider's authoritative subscription record.
type Subscription struct {
	ID          string  `json:"id"`
	Customer    string  `json:"customer"`
	Status      string  `json:"status"`
	Value       float64 `json:"value"`
	NextDueDate string  `json:"nextDueDate"`
	Cycle       string  `json:"cycle"`
	Description string  `json:"description"`
	Deleted     bool    `json:"deleted"`
}

// Payment is one charge attached to a subscription or customer.
type Payment struct {
	ID           string  `json:"id"`
	Customer     string  `json:"customer"`
	Subscription string  `json:"subscription"`
	Status       string  `json:"status"`
	Value        float64 `json:"value"`
	DueDate      string  `json:"dueDate"`
	PaymentDate  string  `json:"paymentDate"`
	BillingType  string  `json:"billingType"`
	InvoiceURL   string  `json:"invoiceUrl"`
}

// PixQrCode is the copy-and-paste PIX payload plus rendered QR image.
type PixQrCode struct {
	Success        bool   `json:"success"`
	EncodedImage   string `json:"encodedImage"`
	Payload        string `json:"payload"`
	ExpirationDate string `json:"expirationDate"`
}

type paymentListResponse struct {
	Data       []Payment `json:"data"`
	TotalCount int       `json:"totalCount"`
	HasMore    bool      `json:"hasMore"`
}
