package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/sockd/internal/errors"
	"grimm.is/sockd/internal/inetd"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want inetd.Spec
	}{
		{"ssh/tcp", inetd.Spec{Service: "ssh", Protocol: "tcp"}},
		{"ssh@eth0/tcp", inetd.Spec{Service: "ssh", Protocol: "tcp", Interface: "eth0"}},
		{"ssh:222/tcp", inetd.Spec{Service: "ssh", Protocol: "tcp", Port: 222}},
		{"ssh@eth0:222/tcp", inetd.Spec{Service: "ssh", Protocol: "tcp", Interface: "eth0", Port: 222}},
		{" time/udp ", inetd.Spec{Service: "time", Protocol: "udp"}},
		{"ssh@br0.100:2222/tcp", inetd.Spec{Service: "ssh", Protocol: "tcp", Interface: "br0.100", Port: 2222}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEndpoint(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEndpoint_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"ssh",
		"ssh/",
		"/tcp",
		"ssh:0/tcp",
		"ssh:65536/tcp",
		"ssh:abc/tcp",
		"ssh@/tcp",
		"ssh@averyveryverylongif/tcp",
		"@eth0/tcp",
		"ssh/tcp/udp",
	} {
		_, err := ParseEndpoint(in)
		assert.True(t, errors.IsKind(err, errors.KindInvalid), "input %q: %v", in, err)
	}
}

func TestParseLine(t *testing.T) {
	sc, err := ParseLine("ssh@eth0:222/tcp nowait [2345] /usr/sbin/sshd -i -D")
	require.NoError(t, err)
	assert.Equal(t, ServiceConfig{
		Endpoint:  "ssh@eth0:222/tcp",
		Mode:      "nowait",
		Runlevels: "[2345]",
		Command:   "/usr/sbin/sshd",
		Args:      []string{"-i", "-D"},
	}, sc)

	sc, err = ParseLine("time/udp   wait   /usr/sbin/in.timed")
	require.NoError(t, err)
	assert.Equal(t, DefaultRunlevels, sc.Runlevels)
	assert.Nil(t, sc.Args)

	for _, bad := range []string{"", "ssh/tcp", "ssh/tcp nowait", "ssh/tcp nowait [2345]"} {
		_, err := ParseLine(bad)
		assert.True(t, errors.IsKind(err, errors.KindInvalid), "input %q", bad)
	}
}
