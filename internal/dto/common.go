// Package dto holds the wire types shared by the REST handlers and the API
// clients. Money travels as JSON numbers.
package dto

import "github.com/shopspring/decimal"

func init() {
	// The original frontend works with plain numbers, not quoted decimals.
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout is the wire format of calendar dates (due_date, period bounds).
const DateLayout = "2006-01-02"

// MaxPageLimit is the largest limit a list endpoint accepts.
const MaxPageLimit = 500

// Page is bound from the skip/limit query string used by every list endpoint.
// The max on Limit must stay equal to MaxPageLimit.
type Page struct {
	Skip  int `form:"skip,default=0"    validate:"min=0"`
	Limit int `form:"limit,default=100" validate:"min=1,max=500"`
}

// MessageResponse is returned by endpoints with no resource body.
type MessageResponse struct {
	Message string `json:"message"`
}
