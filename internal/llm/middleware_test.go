package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	out string
	err error
}

func (s scriptedClient) Complete(context.Context, Request) (string, error) {
	return s.out, s.err
}

func TestLoggingClient(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	client := WithLogging(scriptedClient{out: "resumo"}, logger)
	out, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "x"}}, Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, "resumo", out)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, 1, entry.Data["messages"])
	assert.Equal(t, 6, entry.Data["chars"])

	failing := WithLogging(scriptedClient{err: errors.New("quota")}, logger)
	_, err = failing.Complete(context.Background(), Request{})
	assert.EqualError(t, err, "quota")
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
