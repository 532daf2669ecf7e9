package events

import "context"

// Discard drops every event. wf uses it when nats.url is empty.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, string, any) error { return nil }

func (discard) Close() error { return nil }
