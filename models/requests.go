package models

// CreateWalletRequest represents the request body for wallet creation
type CreateWalletRequest struct {
	Password   string `json:"password" binding:"required"`
	PrivateKey string `json:"private_key"`
	Email      string `json:"email"`
	Label      string `json:"label"`
}

// SendRequest represents the request body for a single payment
type SendRequest struct {
	To     string `json:"to" binding:"required"`
	Amount *int64 `json:"amount" binding:"required"` // satoshi; zero is allowed
	From   string `json:"from"`
	Fee    int64  `json:"fee"`
}

// SendManyRequest represents the request body for a batched payment
type SendManyRequest struct {
	Recipients Recipients `json:"recipients" binding:"required,min=1"`
	From       string     `json:"from"`
	Fee        int64      `json:"fee"`
}

// NewAddressRequest represents the request body for address generation
type NewAddressRequest struct {
	Label string `json:"label"`
}

// ErrorResponse is the body returned by the gateway when it has no value
// from the wallet service to pass through
type ErrorResponse struct {
	Error string `json:"error"`
}
