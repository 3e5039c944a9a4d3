package domain

import (
	"github.com/asynkron/protoactor-go/actor"
)

// ActorRef aliases a process id so domain messages do not leak the actor
// runtime into every package that builds them.
type ActorRef actor.PID

// ActorRequestMixIn carries an optional explicit reply target. When nil,
// responders fall back to ctx.Sender(); see actorutil.ForRequest.
type ActorRequestMixIn struct {
	ReplyToRef *ActorRef
}

type ActorRequest interface {
	ReplyTo() *ActorRef
}

func (r ActorRequestMixIn) ReplyTo() *ActorRef {
	return r.ReplyToRef
}

// ActorResponseMixIn lets callers check request outcomes uniformly without
// a per-response error field.
type ActorResponseMixIn struct {
	ResponseError error
}

func (r ActorResponseMixIn) GetResponseError() error {
	return r.ResponseError
}

func (r ActorResponseMixIn) HasResponseError() bool {
	return r.ResponseError != nil
}

type ActorResponse interface {
	GetResponseError() error
	HasResponseError() bool
}
