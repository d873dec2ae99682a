// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant implements the simulated NUMI assistant.
//
// There is no language model behind it. A Session appends the operator's
// message immediately and, after a fixed delay, appends one canned reply
// chosen by a SimulatedResponder. Every submission owns its own timer;
// Close cancels all of them.
//
// # Key Types
//
//   - Session: submit/reply loop over a model.Conversation
//   - Responder: reply source (SimulatedResponder in production)
//   - Clock: time source (RealClock, ManualClock for tests)
//   - Rotator: cycles the input placeholder hints
//
// # Usage
//
//	s := assistant.NewSession(assistant.WithDelay(time.Second))
//	defer s.Close()
//	s.Submit("Check chemical inventory levels")
//	reply := <-s.Replies()
package assistant
