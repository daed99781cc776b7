package server

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/talentmatch/internal/logging"
	"github.com/dmitrijs2005/talentmatch/internal/server/config"
	"github.com/dmitrijs2005/talentmatch/internal/server/mail"
	"github.com/dmitrijs2005/talentmatch/internal/server/throttle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGate_MemoryWithoutRedis(t *testing.T) {
	c := &config.Config{}
	gate, rdb, err := newGate(context.Background(), c)
	require.NoError(t, err)
	assert.Nil(t, rdb)
	assert.IsType(t, &throttle.MemoryGate{}, gate)
}

func TestNewGate_UnreachableRedis(t *testing.T) {
	c := &config.Config{RedisAddr: "127.0.0.1:1"}
	_, _, err := newGate(context.Background(), c)
	assert.Error(t, err)
}

func TestNewMailer(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()

	m, err := newMailer(context.Background(), c, logging.Nop())
	require.NoError(t, err)
	assert.IsType(t, &mail.LogDispatcher{}, m)

	c.MailProvider = "pigeon"
	_, err = newMailer(context.Background(), c, logging.Nop())
	assert.ErrorContains(t, err, "unknown mail provider")
}
