package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// MakeRational scales a raw on-chain integer down by decimals.
func MakeRational(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, 0-int32(decimals))
}

// ToRaw is the inverse of MakeRational. Digits beyond decimals are truncated.
func ToRaw(v decimal.Decimal, decimals uint8) *big.Int {
	return v.Shift(int32(decimals)).Truncate(0).BigInt()
}

func FormatRational(v decimal.Decimal, places int32) string {
	return v.StringFixed(places)
}

func AbbreviateDecimal(v decimal.Decimal) string {
	s := v.StringFixedBank(9)
	ss := strings.Split(s, ".")
	if len(ss) == 1 {
		return s
	}

	fraction := ss[1]
	cnt := 0
	for _, c := range fraction {
		if c == '0' {
			cnt++
		} else {
			break
		}
	}

	const zero rune = '₀'
	if cnt >= 9 {
		fraction = fraction[:3]
	} else if cnt > 2 {
		fraction = fmt.Sprintf("0%s%s", string(zero+rune(cnt)), fraction[cnt:lo.Min([]int{9, cnt + 3})])
	} else {
		fraction = fraction[:cnt+3]
	}
	return fmt.Sprintf("%s.%s", ss[0], fraction)
}
