// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// Envelope is a typed, serialisable task record: a fresh unique id, a
// registered type discriminator, and the concrete payload (§3).
type Envelope struct {
	ID      string
	Type    string
	Payload any
}

// New wraps payload in a fresh Envelope. payload's dynamic type must have
// been registered with Register.
func New(payload any) (Envelope, error) {
	name, ok := TypeNameOf(payload)
	if !ok {
		return Envelope{}, fmt.Errorf("task: %w: %T", ErrUnregisteredType, payload)
	}
	return Envelope{ID: uuid.NewString(), Type: name, Payload: payload}, nil
}

// wireHeader decodes the discriminator and id keys of the flattened
// on-the-wire representation, where they sit alongside the payload's own
// fields in a single JSON object, per §6.
type wireHeader struct {
	Type string `json:"__type__"`
	ID   string `json:"id"`
}

// MarshalJSON flattens the envelope into a single JSON object carrying
// "__type__", "id", and the payload's own fields.
func (e Envelope) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("task: marshal payload: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("task: payload %T did not marshal to a JSON object: %w", e.Payload, err)
	}
	typeJSON, _ := json.Marshal(e.Type)
	idJSON, _ := json.Marshal(e.ID)
	fields["__type__"] = typeJSON
	fields["id"] = idJSON
	return json.Marshal(fields)
}

// UnmarshalEnvelope decodes a wire-format JSON document into an Envelope,
// resolving "__type__" against the Register-ed type and unmarshalling the
// full document into a fresh value of that type. Returns ErrUnregisteredType
// if the discriminator is unknown (§7: deserialisation failures are
// dropped by the caller, not fatal).
func UnmarshalEnvelope(data []byte) (Envelope, error) {
	var head wireHeader
	if err := json.Unmarshal(data, &head); err != nil {
		return Envelope{}, fmt.Errorf("task: decode header: %w", err)
	}
	t, ok := typeByName(head.Type)
	if !ok {
		return Envelope{}, fmt.Errorf("task: %w: %q", ErrUnregisteredType, head.Type)
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return Envelope{}, fmt.Errorf("task: decode payload %q: %w", head.Type, err)
	}
	return Envelope{ID: head.ID, Type: head.Type, Payload: ptr.Elem().Interface()}, nil
}

// Result is the distinguished TaskResult subtype: it reports the outcome
// of another task, linking back by id (§3).
type Result struct {
	TaskID        string          `json:"task_id"`
	Task          json.RawMessage `json:"task,omitempty"`
	IsFailed      bool            `json:"is_failed"`
	FailureReason string          `json:"failure_reason,omitempty"`
}

// NewResult builds a successful or failed Result for the task identified
// by taskID.
func NewResult(taskID string, err error) Result {
	r := Result{TaskID: taskID}
	if err != nil {
		r.IsFailed = true
		r.FailureReason = err.Error()
	}
	return r
}
