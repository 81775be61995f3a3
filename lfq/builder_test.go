// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import "testing"

func TestBuild_Shapes(t *testing.T) {
	if _, ok := Build[int](New(4).SingleProducer().SingleConsumer()).(*SPSC[int]); !ok {
		t.Fatal("SingleProducer+SingleConsumer did not select SPSC")
	}
	if _, ok := Build[int](New(4)).(*MPMC[int]); !ok {
		t.Fatal("default did not select MPMC")
	}
	if _, ok := Build[int](New(4).Compact()).(*MPMCSeq[int]); !ok {
		t.Fatal("Compact did not select MPMCSeq")
	}
}

func TestBuild_SingleProducerOnlyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for single-producer/multi-consumer configuration")
		}
	}()
	Build[int](New(4).SingleProducer())
}

func TestBuild_SingleConsumerOnlyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for multi-producer/single-consumer configuration")
		}
	}()
	Build[int](New(4).SingleConsumer())
}

func TestRoundToPow2(t *testing.T) {
	cases := map[int]int{2: 2, 3: 4, 4: 4, 5: 8, 1023: 1024, 1024: 1024}
	for in, want := range cases {
		if got := roundToPow2(in); got != want {
			t.Fatalf("roundToPow2(%d) = %d, want %d", in, got, want)
		}
	}
}
