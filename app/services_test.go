package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sunerpy/mlm/config"
)

func TestNewDownloaderClientNilWithoutConfig(t *testing.T) {
	cfg := &config.Config{}
	client, err := newDownloaderClient(cfg, zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, client)
}

func TestNewDownloaderClientRejectsEmptyURL(t *testing.T) {
	cfg := &config.Config{
		Qbittorrent: []config.ClientConfig{
			{Name: "main", URL: "", Username: "u", Password: "p"},
		},
	}
	_, err := newDownloaderClient(cfg, zap.NewNop())
	require.Error(t, err)
}
