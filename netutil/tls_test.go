package netutil_test

import (
	"crypto/tls"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/extcompat/netutil"
)

func Test_TLSConfig(t *testing.T) {
	cfg := netutil.TLSConfig()

	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.False(t, cfg.InsecureSkipVerify)
	assert.Contains(t, cfg.CipherSuites, tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256)
}

func Test_NewTransport(t *testing.T) {
	rt := netutil.NewTransport(2, nil)

	assert.Equal(t, 2, rt.MaxRetries)
	base, ok := rt.Base.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, base.TLSClientConfig)
	assert.Equal(t, uint16(tls.VersionTLS12), base.TLSClientConfig.MinVersion)
}
