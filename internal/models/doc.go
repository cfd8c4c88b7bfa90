// Package models defines the persisted domain models for share-mal.
//
// # Models
//
//   - Bill: a shared expense with a total, a splitting operator and a date
//   - Person: one participant of a bill with the amount they owe and whether
//     they have paid it
//
// Participants have no identity outside their bill; a person row is created
// when a bill is created or its person list is replaced, and deleted with the
// bill.
//
// Amounts are decimals with two fraction digits and are stored as text so
// that no float rounding ever touches them.
package models
