// Package job provides the delivery Job aggregate and the state machine that
// governs its lifecycle.
//
// The package includes:
//   - Status: the nine lifecycle states and the table of legal transitions
//   - StateMachine: a stateless component that, given the current state, a
//     target state and TransitionOptions, returns a Transition (next state plus
//     the ordered side-effect commands to run) or a typed error
//   - Job: the aggregate that holds the state value, endpoints, commercial
//     attributes, courier assignment, cancellation record and the first-entry
//     timestamp of every state
//   - Event: the typed domain events emitted after a transition commits
//   - SecurityCode: the four digit code issued at creation and checked when
//     the courier marks the job delivered
//
// State transitions:
//
//	created ──> finding_driver ──> accepted ──> picking_up ──> on_route ──> delivered ──> paid
//	               │    ▲
//	               ▼    │
//	          no_driver_found
//
//	Every non-terminal state except delivered may also move to cancelled.
//
// The Job never decides on its own which transition is legal: callers plan a
// Transition with StateMachine and hand it to Job.Apply. This keeps the rules
// testable without any entity and keeps the entity free of workflow logic.
package job
