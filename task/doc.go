// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package task implements the durable task queue: typed, self-describing
// task envelopes persisted to a FIFO shared by every worker process.
//
// # Wire format
//
// A task envelope serialises to a JSON object with keys "__type__" (the
// registered type name), "id" (a UUID string), and the type's own fields.
// TaskResult additionally carries "task" (the originating envelope),
// "is_failed", and "failure_reason".
//
// # Registration
//
// Concrete task types are registered once at process startup:
//
//	task.Register[Echo]("Echo")
//
// Registration is required before a type can be put onto or fetched from
// a Queue; it is imperative, not reflection-based (per §6).
//
// # Backing stores
//
// Queue has two implementations: LocalQueue, an in-memory FIFO for tests
// and single-process use, and RedisQueue, backed by a single Redis list
// key via LPUSH/BRPOP. Both give at-most-once delivery per pop; at-least-
// once end to end is the handler's responsibility (§4.3).
package task
