package market

import "fmt"

// Category groups result codes by failure class. Every failed apply is
// rejected whole; the category tells the caller whether the input, the
// authorization, the current state or a transfer was at fault.
type Category int

const (
	CategorySuccess Category = iota
	CategoryValidation
	CategoryAuthorization
	CategoryState
	CategoryTransfer
	CategoryInternal
)

// Result is the outcome of applying one operation.
type Result int

const (
	ResSuccess Result = 0

	// Validation failures (100-199): the request can never succeed as
	// submitted.
	ResMalformed     Result = 100
	ResZeroPrice     Result = 101
	ResEmptyTokenSet Result = 102
	ResNotAllowed    Result = 103
	ResBidTooLow     Result = 104
	ResInvalidTime   Result = 105
	ResBadProof      Result = 106
	ResUnknownRoot   Result = 107
	ResLeafConsumed  Result = 108
	ResFeeOverflow   Result = 109

	// Authorization failures (200-299): the caller or signer may not
	// perform the operation.
	ResNotSeller    Result = 200
	ResNotBidder    Result = 201
	ResNotOwner     Result = 202
	ResNotAdmin     Result = 203
	ResBadSignature Result = 204
	ResBadNonce     Result = 205

	// State failures (300-399): the operation is valid but the current
	// state does not admit it.
	ResNoSale        Result = 300
	ResHasBid        Result = 301
	ResNoBid         Result = 302
	ResAuctionLive   Result = 303
	ResAuctionEnded  Result = 304
	ResNotAuction    Result = 305
	ResNotFixedPrice Result = 306

	// Transfer failures (400-499): an asset or payment movement could
	// not complete. The whole operation is discarded.
	ResInsufficientFunds Result = 400
	ResTransferFailed    Result = 401

	// Internal failures (500+).
	ResInternal Result = 500
)

var resultNames = map[Result]string{
	ResSuccess:           "success",
	ResMalformed:         "malformed",
	ResZeroPrice:         "zeroPrice",
	ResEmptyTokenSet:     "emptyTokenSet",
	ResNotAllowed:        "notAllowed",
	ResBidTooLow:         "bidTooLow",
	ResInvalidTime:       "invalidTime",
	ResBadProof:          "badProof",
	ResUnknownRoot:       "unknownRoot",
	ResLeafConsumed:      "leafConsumed",
	ResFeeOverflow:       "feeOverflow",
	ResNotSeller:         "notSeller",
	ResNotBidder:         "notBidder",
	ResNotOwner:          "notOwner",
	ResNotAdmin:          "notAdmin",
	ResBadSignature:      "badSignature",
	ResBadNonce:          "badNonce",
	ResNoSale:            "noSale",
	ResHasBid:            "hasBid",
	ResNoBid:             "noBid",
	ResAuctionLive:       "auctionLive",
	ResAuctionEnded:      "auctionEnded",
	ResNotAuction:        "notAuction",
	ResNotFixedPrice:     "notFixedPrice",
	ResInsufficientFunds: "insufficientFunds",
	ResTransferFailed:    "transferFailed",
	ResInternal:          "internal",
}

// OK reports whether the result is success.
func (r Result) OK() bool {
	return r == ResSuccess
}

// Category returns the failure class of the result.
func (r Result) Category() Category {
	switch {
	case r == ResSuccess:
		return CategorySuccess
	case r >= 100 && r < 200:
		return CategoryValidation
	case r >= 200 && r < 300:
		return CategoryAuthorization
	case r >= 300 && r < 400:
		return CategoryState
	case r >= 400 && r < 500:
		return CategoryTransfer
	default:
		return CategoryInternal
	}
}

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("result(%d)", int(r))
}

func (c Category) String() string {
	switch c {
	case CategorySuccess:
		return "success"
	case CategoryValidation:
		return "validation"
	case CategoryAuthorization:
		return "authorization"
	case CategoryState:
		return "state"
	case CategoryTransfer:
		return "transfer"
	default:
		return "internal"
	}
}
