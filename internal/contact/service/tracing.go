package service

import "go.opentelemetry.io/otel/attribute"

func attrContactID(id int64) attribute.KeyValue {
	return attribute.Int64("contact.id", id)
}

func attrOutcome(outcome string) attribute.KeyValue {
	return attribute.String("contact.outcome", outcome)
}
