package models

import (
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/shopspring/decimal"
	"github.com/stellar/go/support/errors"
)

var satoshiPerBitcoin = decimal.NewFromInt(btcutil.SatoshiPerBitcoin)

// ParseAmount reads a satoshi amount. Plain integers are satoshi; a "btc"
// suffix marks a decimal bitcoin amount ("0.001btc" is 100000 satoshi).
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)

	if !strings.HasSuffix(lower, "btc") {
		sat, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid satoshi amount %q", s)
		}
		return sat, nil
	}

	btc, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(lower, "btc")))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid bitcoin amount %q", s)
	}
	sat := btc.Mul(satoshiPerBitcoin)
	if !sat.Equal(sat.Truncate(0)) {
		return 0, errors.New("bitcoin amount " + s + " has more than 8 decimal places")
	}
	return sat.IntPart(), nil
}

// FormatAmount renders satoshi as a bitcoin string, e.g. "0.001 BTC"
func FormatAmount(sat int64) string {
	return btcutil.Amount(sat).String()
}
