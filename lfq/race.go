// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package lfq

// RaceEnabled is true when the race detector is active.
// The MPMC/MPMCSeq/SPSC tests use this to skip their concurrent
// producer/consumer goroutines, which the race detector flags as data
// races even though the acquire/release atomics make them safe.
const RaceEnabled = true
