package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestManager(client CloudClient) *Manager {
	return NewManager(NewAccountFlow(client), zap.NewNop())
}

func TestAccountFlowHappyPath(t *testing.T) {

	assert := assert.New(t)

	client := &TestCloudClient{Username: "alice", Password: "secret"}
	m := newTestManager(client)

	form, ok := m.Begin().(ShowForm)
	assert.True(ok, "first step is a form")
	assert.Equal(StepUser, form.StepID)
	assert.NotEmpty(form.FlowID)
	assert.Len(form.Schema, 2)

	result, err := m.Submit(form.FlowID, map[string]string{
		"username": "alice",
		"password": "secret",
	})
	assert.NoError(err)
	entry, ok := result.(CreateEntry)
	assert.True(ok, "flow ends with an entry")
	assert.Equal("Cloud Account", entry.Title)
	assert.Equal("alice", entry.Data["username"])
	assert.Equal(1, client.AuthCalls)
	assert.Len(m.Entries(), 1)
}

func TestAccountFlowConnectionErrorRetries(t *testing.T) {

	assert := assert.New(t)

	client := &TestCloudClient{Username: "alice", Password: "secret", Unreachable: true}
	m := newTestManager(client)

	form := m.Begin().(ShowForm)

	result, err := m.Submit(form.FlowID, map[string]string{
		"username": "alice",
		"password": "secret",
	})
	assert.NoError(err)
	retry, ok := result.(ShowForm)
	assert.True(ok, "connection error re-shows the form")
	assert.Equal(ErrorConnection, retry.Errors["base"])

	// the flow stays alive and can be retried
	client.Unreachable = false
	result, err = m.Submit(form.FlowID, map[string]string{
		"username": "alice",
		"password": "secret",
	})
	assert.NoError(err)
	_, ok = result.(CreateEntry)
	assert.True(ok, "retry succeeds")
}

func TestAccountFlowInvalidAuth(t *testing.T) {

	assert := assert.New(t)

	client := &TestCloudClient{Username: "alice", Password: "secret"}
	m := newTestManager(client)

	form := m.Begin().(ShowForm)
	result, err := m.Submit(form.FlowID, map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.NoError(err)
	retry, ok := result.(ShowForm)
	assert.True(ok)
	assert.Equal(ErrorInvalidAuth, retry.Errors["base"])
}

func TestAccountFlowMissingCredentials(t *testing.T) {

	assert := assert.New(t)

	client := &TestCloudClient{Username: "alice", Password: "secret"}
	m := newTestManager(client)

	form := m.Begin().(ShowForm)
	result, err := m.Submit(form.FlowID, map[string]string{})
	assert.NoError(err)
	retry, ok := result.(ShowForm)
	assert.True(ok)
	assert.Equal("missing_credentials", retry.Errors["base"])
	assert.Equal(0, client.AuthCalls)
}

func TestSingleInstanceAllowed(t *testing.T) {

	assert := assert.New(t)

	client := &TestCloudClient{Username: "alice", Password: "secret"}
	m := newTestManager(client)

	form := m.Begin().(ShowForm)
	_, err := m.Submit(form.FlowID, map[string]string{
		"username": "alice",
		"password": "secret",
	})
	assert.NoError(err)

	abort, ok := m.Begin().(Abort)
	assert.True(ok, "second flow aborts")
	assert.Equal(AbortSingleInstance, abort.Reason)
}

func TestUnknownFlowID(t *testing.T) {

	assert := assert.New(t)

	m := newTestManager(&TestCloudClient{})
	_, err := m.Submit("nope", map[string]string{})
	assert.ErrorIs(err, ErrUnknownFlow)
}
