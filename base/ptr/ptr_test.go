package ptr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPtr(t *testing.T) {
	req := require.New(t)

	req.Equal("abc", *String("abc"))
	req.Equal(42, *Int(42))
	req.Equal(int32(42), *Int32(42))
	req.Equal(int64(42), *Int64(42))
	req.Equal(4.2, *Float64(4.2))
	req.Equal(true, *Bool(true))

	now := time.Now()
	req.Equal(now, *Time(now))
}
