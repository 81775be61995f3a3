// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import (
	"reflect"
	"sync"
)

var registry = struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}{
	byName: make(map[string]reflect.Type),
	byType: make(map[reflect.Type]string),
}

// Register associates the task type T with a stable schema discriminator
// name, so envelopes carrying that name can be decoded back into a T.
// Registration is imperative and explicit, done once at process startup
// (§6): there is no reflection-based auto-discovery across the interface
// boundary.
func Register[T any](name string) {
	var zero T
	t := reflect.TypeOf(zero)

	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.byName[name] = t
	registry.byType[t] = name
}

// TypeNameOf returns the registered discriminator for the dynamic type of
// v, and whether one was found.
func TypeNameOf(v any) (string, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	name, ok := registry.byType[reflect.TypeOf(v)]
	return name, ok
}

// typeByName returns the reflect.Type registered under name.
func typeByName(name string) (reflect.Type, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	t, ok := registry.byName[name]
	return t, ok
}

func init() {
	Register[Result]("TaskResult")
}
