package paypal

type DepositReq struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type WithdrawalReq struct {
	PayPalEmail string  `json:"paypal_email" validate:"required,email"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
}
