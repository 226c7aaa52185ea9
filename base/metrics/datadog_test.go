package metrics

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDDAddr(t *testing.T) {
	req := require.New(t)

	addr := ddAddr("127.0.0.1")
	req.Equal("127.0.0.1:8125", addr)

	// the configured host must be port-free, a host:port value would
	// double the port and fail address parsing
	_, _, err := net.SplitHostPort(addr)
	req.NoError(err)
	_, _, err = net.SplitHostPort(ddAddr("127.0.0.1:8125"))
	req.Error(err)
}
