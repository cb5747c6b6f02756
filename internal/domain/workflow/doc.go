// Package workflow holds the pure decision rules for task mutations: who may
// act on a task and which status changes the workflow graph allows.
//
// Nothing in this package performs I/O. Callers load the task, ask for a
// decision, and persist the result in the same transaction.
package workflow
