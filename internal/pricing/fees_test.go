package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeeSchedule(t *testing.T) {
	require.Equal(t, Money(182), DefaultFees.Fee(2400))
	require.Equal(t, Money(0), DefaultFees.Fee(0))
	require.Equal(t, Money(0), DefaultFees.Fee(-100))
}

func TestChargeTotal(t *testing.T) {
	require.Equal(t, Money(2582), DefaultFees.ChargeTotal(2400, 0))
	// shipping participates in the proportional part
	require.Equal(t, Money(2400+800+(3200*550)/10000+50), DefaultFees.ChargeTotal(2400, 800))
	require.Equal(t, Money(0), DefaultFees.ChargeTotal(0, 0))
}
