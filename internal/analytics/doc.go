// Package analytics computes debt and affordability figures over BNPL records.
//
// All functions are pure: they take the salary, the records and a reference
// time, and never touch storage. Money uses decimal arithmetic; outputs are
// rounded to 2 decimal places except the debt ratio (4 places).
package analytics
