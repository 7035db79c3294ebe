package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	c, err := ParseClock("08:05")
	require.NoError(t, err)
	assert.Equal(t, Clock(485), c)
	assert.Equal(t, "08:05", c.String())

	for _, bad := range []string{"", "8:00", "08h00", "24:00", "12:60", "ab:cd", "08:000"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, bad)
	}
}

func TestDurationMinutes(t *testing.T) {
	d, err := DurationMinutes("08:00", "10:15")
	require.NoError(t, err)
	assert.Equal(t, 135, d)

	_, err = DurationMinutes("08:00", "1015")
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)
}

func TestAddMinutes_RoundTrip(t *testing.T) {
	for start := 0; start < MinutesPerDay; start += 37 {
		s := Clock(start).String()
		for d := 0; d < MinutesPerDay; d += 13 {
			end, err := AddMinutes(s, d)
			if start+d >= MinutesPerDay {
				assert.ErrorIs(t, err, ErrTimeOutOfRange, "%s + %d", s, d)
				continue
			}
			require.NoError(t, err, "%s + %d", s, d)
			got, err := DurationMinutes(s, end)
			require.NoError(t, err)
			assert.Equal(t, d, got, "%s + %d", s, d)
		}
	}
}

func TestAddMinutes_NoWrap(t *testing.T) {
	_, err := AddMinutes("23:00", 60)
	assert.ErrorIs(t, err, ErrTimeOutOfRange)

	_, err = AddMinutes("00:30", -31)
	assert.ErrorIs(t, err, ErrTimeOutOfRange)

	end, err := AddMinutes("23:00", 59)
	require.NoError(t, err)
	assert.Equal(t, "23:59", end)
}

func TestOverlaps(t *testing.T) {
	at := func(s string) Clock { return MustClock(s) }

	assert.True(t, Overlaps(at("08:00"), at("10:00"), at("09:00"), at("11:00")))
	assert.True(t, Overlaps(at("08:00"), at("12:00"), at("09:00"), at("10:00")))
	// 首尾相接不重叠
	assert.False(t, Overlaps(at("08:00"), at("10:00"), at("10:00"), at("12:00")))
	assert.False(t, Overlaps(at("14:00"), at("16:00"), at("08:00"), at("10:00")))
}

func TestOverlaps_Symmetric(t *testing.T) {
	for a1 := 0; a1 < MinutesPerDay; a1 += 97 {
		for a2 := a1 + 1; a2 < MinutesPerDay; a2 += 89 {
			for b1 := 0; b1 < MinutesPerDay; b1 += 101 {
				for b2 := b1 + 1; b2 < MinutesPerDay; b2 += 83 {
					A1, A2, B1, B2 := Clock(a1), Clock(a2), Clock(b1), Clock(b2)
					require.Equal(t, Overlaps(A1, A2, B1, B2), Overlaps(B1, B2, A1, A2),
						"[%s,%s) vs [%s,%s)", A1, A2, B1, B2)
				}
			}
		}
	}
}

func TestParseInterval(t *testing.T) {
	iv, err := ParseInterval("10:15", "12:00")
	require.NoError(t, err)
	assert.Equal(t, 105, iv.Minutes())

	_, err = ParseInterval("10:00", "10:00")
	assert.ErrorIs(t, err, ErrEmptyInterval)

	_, err = ParseInterval("10:00", "9:00")
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)
}
