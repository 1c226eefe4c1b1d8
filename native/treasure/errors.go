package treasure

import (
	"errors"
	"fmt"

	"treasurechain/native/common"
)

var (
	errNilState  = errors.New("treasure engine: state not configured")
	errNilLedger = errors.New("treasure engine: ledger not configured")
	errNilParams = errors.New("treasure engine: params not configured")

	ErrTreasureNotFound = fmt.Errorf("%w: treasure not found", common.ErrNotFound)
	ErrAwardNotFound    = fmt.Errorf("%w: sponsor award not found", common.ErrNotFound)
	ErrTicketNotFound   = fmt.Errorf("%w: ticket not found", common.ErrNotFound)
	ErrResultNotFound   = fmt.Errorf("%w: result not found", common.ErrNotFound)
	ErrCrewNotFound     = fmt.Errorf("%w: crew info not found", common.ErrNotFound)
	ErrUnknownAccount   = fmt.Errorf("%w: account does not exist", common.ErrNotFound)

	ErrInvalidLocation = fmt.Errorf("%w: location (latitude and/or longitude) is not valid", common.ErrValidation)
	ErrInvalidMemo     = fmt.Errorf("%w: malformed memo", common.ErrValidation)
	ErrWrongCurrency   = fmt.Errorf("%w: must pay with the base currency", common.ErrValidation)

	ErrBelowCheckPrice   = fmt.Errorf("%w: transferred amount is below the price for checking treasure value", common.ErrPaymentMismatch)
	ErrBelowUnlockPrice  = fmt.Errorf("%w: transferred amount is below the price for unlocking a treasure", common.ErrPaymentMismatch)
	ErrBelowMinimumAward = fmt.Errorf("%w: paid amount is below minimum sponsor award value", common.ErrPaymentMismatch)
	ErrAwardCostMismatch = fmt.Errorf("%w: paid amount does not match total cost of sponsor award", common.ErrPaymentMismatch)

	ErrAwardAlreadyPaid  = fmt.Errorf("%w: sponsor award already paid", common.ErrStateConflict)
	ErrTurnoverRegressed = fmt.Errorf("%w: reported total turnover is below the stored turnover", common.ErrStateConflict)
	ErrPriceFeedMissing  = fmt.Errorf("%w: price feed is zero", common.ErrStateConflict)
)
