// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package workflow implements the workflow engine (C5): a tree of Steps,
// each a small state machine, driven forward by polling and by TaskResult
// injection from the dispatcher.
//
// # Steps
//
// A Step implements CreateTask and VerifyDone:
//
//	type convertStep struct {
//	    workflow.BaseStep
//	    dispatcher *dispatch.Dispatcher
//	    in, out    string
//	}
//
//	func (s *convertStep) CreateTask(ctx context.Context) (string, error) {
//	    return s.dispatcher.Post(ctx, handler.ConvertAudio{SourceFileID: s.in, TargetFormat: "mp3"})
//	}
//
//	func (s *convertStep) VerifyDone(ctx context.Context) (bool, error) {
//	    _, err := os.Stat(s.out)
//	    return err == nil, nil
//	}
//
// # Manager
//
//	m := workflow.NewManager(dispatcher, log, 0)
//	wf := m.CreateWorkflow()
//	wf.Then(&convertStep{BaseStep: workflow.NewBaseStep("convert", 0, nil), ...}, "")
//	go m.Run(ctx, pollInterval)
//
// Manager registers itself as a task.Result handler on the dispatcher so
// every TaskResult is matched, in O(1), against the Step awaiting it via an
// internal task_id index, and routes the result to that Step's
// SetTaskResult.
package workflow
