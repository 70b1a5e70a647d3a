// Package extract runs batches of rows through a fixed set of extractors.
//
// A Coordinator owns an ordered list of Extractors. Each call to Process
// builds n rows, gives every extractor a fresh private Task, and starts one
// asynchronous Run that:
//
//  1. calls OnStart on every task concurrently and waits for all of them,
//  2. for each row in order, calls OnNext on every task concurrently and
//     waits for all of them before moving to the next row,
//  3. calls OnComplete on every task concurrently and waits for all of them.
//
// Cancellation is cooperative: Cancel stops the run from starting further
// rows, but a row that is already fanned out finishes and the completion
// phase still runs. A hook error fails its fan-out group once every member
// of the group has returned; the run then stops and reports the error.
//
// Control wraps a Coordinator with a mutex so the check-then-act sequences
// behind the HTTP endpoints (start unless running, cancel if running) are
// atomic with respect to each other.
package extract
