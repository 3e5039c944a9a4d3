package flow

import (
	"context"
	"errors"
	"time"
)

// AccountFlow links a vendor cloud account: one credentials form, validated
// against the cloud, retried with an error banner on failure.
type AccountFlow struct {
	client CloudClient
}

func NewAccountFlow(client CloudClient) *AccountFlow {
	return &AccountFlow{client: client}
}

func accountSchema() []Field {
	return []Field{
		{Name: "username", Required: true},
		{Name: "password", Required: true, Secret: true},
	}
}

func (f *AccountFlow) Begin(flowID string) Result {
	return ShowForm{
		FlowID: flowID,
		StepID: StepUser,
		Schema: accountSchema(),
	}
}

func (f *AccountFlow) Submit(flowID string, input map[string]string) Result {
	username := input["username"]
	password := input["password"]
	if username == "" || password == "" {
		return ShowForm{
			FlowID: flowID,
			StepID: StepUser,
			Schema: accountSchema(),
			Errors: map[string]string{"base": "missing_credentials"},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := f.client.Authenticate(ctx, username, password); err != nil {
		reason := ErrorConnection
		if errors.Is(err, ErrInvalidAuth) {
			reason = ErrorInvalidAuth
		}
		return ShowForm{
			FlowID: flowID,
			StepID: StepUser,
			Schema: accountSchema(),
			Errors: map[string]string{"base": reason},
		}
	}

	return CreateEntry{
		Title: "Cloud Account",
		Data: map[string]string{
			"username": username,
			"password": password,
		},
	}
}
