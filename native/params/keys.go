package params

const (
	// ParamsKeyPauses stores the module pause configuration.
	ParamsKeyPauses = "system/pauses"
)

// Setting keys understood by the treasure economy.
const (
	KeyEosUSD          = "eosusd"       // base currency price in USD
	KeyCheckPrice      = "checktreasur" // USD price of a value check
	KeyUnlockPrice     = "unlocktreas"  // USD price of an unlock attempt
	KeyMinSponsorAward = "minsponsoraw" // minimum sponsor award payment in base currency
	KeySponsorOdds     = "rndsponsorac" // 1:N odds of activating a linked sponsor award
	KeyPartBonus       = "partbonus"    // participation bonus in whole reward tokens
	KeySolveBonus      = "solvebonus"   // solve bonus in whole reward tokens
	KeyBonusCap        = "bonuscap"     // creator bonus cap in whole reward tokens
	KeyBonusBuffer     = "bonusbuffer"  // reward pool reserve in whole reward tokens
	KeyTierHigh        = "tierhigh"
	KeyTierMid         = "tiermid"
	KeyTierLow         = "tierlow"
	KeyPayoutBps       = "payoutbps" // share of escrow routed to the payout account
)
