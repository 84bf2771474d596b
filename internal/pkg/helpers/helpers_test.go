package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	assert.Equal(t, uint64(40), offset)
	assert.Equal(t, uint64(20), limit)

	offset, limit = CalculateOffsetLimit(0, 0)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, uint64(DefaultPageSize), limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(101, 2, 50)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)

	empty := NewPaginationInfo(0, 5, 10)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Equal(t, 1, empty.CurrentPage)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/students", nil)
	_, _, ok := ParsePaginationParams(c)
	assert.False(t, ok)

	c.Request = httptest.NewRequest("GET", "/students?page=2&size=abc", nil)
	page, size, ok := ParsePaginationParams(c)
	assert.True(t, ok)
	assert.Equal(t, 2, page)
	assert.Equal(t, DefaultPageSize, size)
}

func TestParseClock(t *testing.T) {
	v, err := ParseClock("9:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05", v)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
	_, err = ParseClock("noon")
	assert.Error(t, err)

	assert.True(t, ClockBefore("09:00", "10:30"))
	assert.False(t, ClockBefore("10:30", "10:30"))
}

func TestNormalizeWeekday(t *testing.T) {
	day, ok := NormalizeWeekday(" thursday ")
	assert.True(t, ok)
	assert.Equal(t, "Thursday", day)

	_, ok = NormalizeWeekday("Funday")
	assert.False(t, ok)
}

func TestParseDateAndToday(t *testing.T) {
	d, err := ParseDate("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, time.Friday, d.Weekday())

	_, err = ParseDate("14/03/2025")
	assert.Error(t, err)

	now := time.Date(2025, 3, 14, 17, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), Today(now))
}

func TestNullableString(t *testing.T) {
	blank := "   "
	assert.Nil(t, NullableString(&blank))
	assert.Nil(t, NullableString(nil))
	assert.Equal(t, "a@b.c", *StringPtr(" a@b.c "))
	assert.Equal(t, "", DerefString(nil))

	zero := int64(0)
	assert.Nil(t, NullableID(&zero))
}
