package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCIDR(t *testing.T) {
	t.Run("expands /24 excluding network and broadcast", func(t *testing.T) {
		hosts := Resolve("192.168.1.0/24")

		require.Len(t, hosts, 254)
		assert.Equal(t, "192.168.1.1", hosts[0])
		assert.Equal(t, "192.168.1.254", hosts[253])
	})

	t.Run("expands /31 with both addresses", func(t *testing.T) {
		hosts := Resolve("10.0.0.0/31")

		require.Len(t, hosts, 2)
		assert.Equal(t, []string{"10.0.0.0", "10.0.0.1"}, hosts)
	})

	t.Run("expands /32 to single host", func(t *testing.T) {
		hosts := Resolve("10.0.0.5/32")

		require.Len(t, hosts, 1)
		assert.Equal(t, "10.0.0.5", hosts[0])
	})

	t.Run("masks base address to network", func(t *testing.T) {
		hosts := Resolve("192.168.1.77/28")

		// Network 192.168.1.64/28 minus network and broadcast.
		require.Len(t, hosts, 14)
		assert.Equal(t, "192.168.1.65", hosts[0])
		assert.Equal(t, "192.168.1.78", hosts[13])
	})

	t.Run("caps enumeration at 65536 hosts", func(t *testing.T) {
		hosts := Resolve("10.0.0.0/8")

		assert.Len(t, hosts, 65536)
		assert.Equal(t, "10.0.0.1", hosts[0])
	})

	t.Run("produces ascending order", func(t *testing.T) {
		hosts := Resolve("172.16.0.0/29")

		require.Len(t, hosts, 6)
		for i := 1; i < len(hosts); i++ {
			assert.Less(t, hosts[i-1], hosts[i])
		}
	})

	tests := []struct {
		name string
		expr string
	}{
		{"prefix out of range", "1.2.3.4/99"},
		{"negative prefix", "1.2.3.4/-1"},
		{"unparseable prefix", "1.2.3.4/abc"},
		{"bad base address", "300.2.3.4/24"},
		{"not an address", "nothing/24"},
		{"ipv6 base", "2001:db8::/64"},
	}
	for _, tt := range tests {
		t.Run("malformed yields zero hosts: "+tt.name, func(t *testing.T) {
			assert.Empty(t, Resolve(tt.expr))
		})
	}
}

func TestResolveDashRange(t *testing.T) {
	t.Run("expands simple range", func(t *testing.T) {
		hosts := Resolve("10.0.0.1-5")

		assert.Equal(t, []string{
			"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5",
		}, hosts)
	})

	t.Run("clamps end above 255", func(t *testing.T) {
		hosts := Resolve("10.0.0.250-260")

		require.Len(t, hosts, 6)
		assert.Equal(t, "10.0.0.250", hosts[0])
		assert.Equal(t, "10.0.0.255", hosts[5])
	})

	t.Run("clamps both bounds above 255 to single host", func(t *testing.T) {
		hosts := Resolve("10.0.0.300-400")

		assert.Equal(t, []string{"10.0.0.255"}, hosts)
	})

	t.Run("single value range", func(t *testing.T) {
		assert.Equal(t, []string{"10.0.0.7"}, Resolve("10.0.0.7-7"))
	})

	t.Run("inverted range yields zero hosts", func(t *testing.T) {
		assert.Empty(t, Resolve("10.0.0.50-10"))
	})
}

func TestResolveLiteral(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"hostname", "example.com"},
		{"ip literal", "192.168.1.10"},
		{"ipv6 literal", "::1"},
		{"word with dash outside range shape", "my-host"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{tt.expr}, Resolve(tt.expr))
		})
	}

	t.Run("trims whitespace", func(t *testing.T) {
		assert.Equal(t, []string{"example.com"}, Resolve("  example.com  "))
	})

	t.Run("empty input yields zero hosts", func(t *testing.T) {
		assert.Empty(t, Resolve(""))
		assert.Empty(t, Resolve("   "))
	})
}
