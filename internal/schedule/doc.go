// Package schedule computes upcoming run times for cron expressions.
//
// It sits on a full cron implementation rather than the census's own field
// parser, so annotations match what a scheduler would actually do with the
// expression.
package schedule
