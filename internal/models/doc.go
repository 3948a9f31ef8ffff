// Package models defines the core domain models for the TripSplit ledger.
//
// # Models
//
//   - Trip: groups participants, expenses, and payments under one base currency
//   - Participant: a person scoped to one trip (registered user or guest)
//   - Expense: money fronted by one participant, split among several
//   - ExpenseSplit: one participant's share of an expense
//   - Payment: a direct settlement transfer between two participants
//   - Balance: a participant's derived net position (never stored)
//   - Transfer: one suggested settlement payment (never stored)
//
// # Conventions
//
// All monetary amounts are int64 values in the smallest currency unit (cents
// for USD). Amounts are compared with exact integer equality; no floats touch
// money anywhere in this module.
//
// Currency codes are ISO-4217 three-letter strings. Dates are "YYYY-MM-DD"
// text; created/updated timestamps are "YYYY-MM-DD HH:MM:SS" UTC text.
//
// Relationships use ID strings rather than pointers to avoid circular
// references between aggregates.
package models
