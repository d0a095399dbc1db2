package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ha1tch/sqlcore/config"
)

func TestNew_Defaults(t *testing.T) {
	c := config.New()
	assert.Equal(t, config.DefaultMaxDepth, c.MaxDepth)
	assert.Equal(t, uint64(config.DefaultInitialBytes), c.InitialBytes)
	assert.Equal(t, config.DialectANSI, c.Dialect)
	assert.True(t, c.ContinueOnError)
}

func TestNew_Options(t *testing.T) {
	c := config.New(
		config.WithMaxDepth(5),
		config.WithMaxErrors(1),
		config.WithContinueOnError(false),
		config.WithDialect(config.DialectExtended),
	)
	assert.Equal(t, 5, c.MaxDepth)
	assert.Equal(t, 1, c.MaxErrors)
	assert.False(t, c.ContinueOnError)
	assert.Equal(t, config.DialectExtended, c.Dialect)
}

func TestArenaConfig_Translation(t *testing.T) {
	c := config.New(config.WithInitialBytes(1000), config.WithMaxBlockBytes(2000), config.WithMaxTotalBytes(3000))
	ac := c.ArenaConfig(10)
	assert.Equal(t, uint64(10), ac.ElemSize)
	assert.Equal(t, uint64(1000), ac.InitialBytes)
	assert.Equal(t, uint64(2000), ac.MaxBlockBytes)
	assert.Equal(t, uint64(3000), ac.MaxTotalBytes)
}
