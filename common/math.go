package common

import (
	"math/big"
	"strconv"
)

// BigToFloat converts a big int to float according to its number of decimal digits
// Example:
// - BigToFloat(1100, 3) = 1.1
// - BigToFloat(1100, 2) = 11
// - BigToFloat(1100, 5) = 0.11
func BigToFloat(b *big.Int, decimal uint64) float64 {
	f := new(big.Float).SetInt(b)
	power := new(big.Float).SetInt(new(big.Int).Exp(
		big.NewInt(10), big.NewInt(int64(decimal)), nil,
	))
	res := new(big.Float).Quo(f, power)
	result, _ := res.Float64()
	return result
}

// FormatTokenAmount renders a raw token amount with at most precision
// fractional digits and no trailing zeros.
// Example:
// - FormatTokenAmount(1234567800000000000000, 18, 4) = "1234.5678"
// - FormatTokenAmount(1500000000000000000, 18, 4) = "1.5"
// - FormatTokenAmount(0, 18, 4) = "0"
func FormatTokenAmount(b *big.Int, decimal uint64, precision int) string {
	if b == nil {
		return "0"
	}
	f := BigToFloat(b, decimal)
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', precision, 64), 64)
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
