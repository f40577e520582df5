// Package cronfield parses five-field cron expressions into concrete value sets.
//
// Unlike scheduling libraries, which compile an expression into an opaque
// next-run iterator, this parser resolves every field to the exact integers
// it covers so the values can be counted into distributions. Step syntax is
// deliberately unsupported and reported as a parse failure.
package cronfield
