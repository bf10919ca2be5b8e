package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolverNetworkLiterals(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"ipv4 literal", "127.0.0.1", NetworkTCP4},
		{"ipv4 public literal", "8.8.8.8", NetworkTCP4},
		{"ipv6 loopback", "::1", NetworkTCP6},
		{"ipv6 literal", "2001:db8::1", NetworkTCP6},
		{"ipv4 mapped ipv6", "::ffff:1.2.3.4", NetworkTCP4},
	}

	resolver := NewResolver("", time.Second)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.Network(context.Background(), tt.host))
		})
	}
}

func TestResolverNetworkFailureDefaultsIPv4(t *testing.T) {
	resolver := NewResolver("", 200*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	assert.Equal(t, NetworkTCP4, resolver.Network(ctx, "host.invalid"))
}

func TestNewResolverServerNormalization(t *testing.T) {
	t.Run("appends default dns port", func(t *testing.T) {
		r := NewResolver("10.0.0.53", time.Second)
		assert.Equal(t, "10.0.0.53:53", r.server)
	})

	t.Run("keeps explicit port", func(t *testing.T) {
		r := NewResolver("10.0.0.53:5353", time.Second)
		assert.Equal(t, "10.0.0.53:5353", r.server)
	})

	t.Run("empty server uses system resolver", func(t *testing.T) {
		r := NewResolver("", 0)
		assert.Empty(t, r.server)
		assert.Equal(t, defaultResolveTimeout, r.timeout)
	})
}
