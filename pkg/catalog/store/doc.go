// Package store implements the catalogue's relational store on SQLite.
//
// The store owns the schema (policies, rules, actions, parties, assets, and
// their join relations) and every CRUD operation over it. Referential integrity
// is enforced in both layers: SQLite foreign keys cascade join rows when
// their owning policy or rule is deleted, and the operations themselves
// validate parent existence, reject duplicate URIs and duplicate links, and
// refuse to delete rules or parties that are still referenced.
//
// # Transactions
//
// Write methods on Store each run as one transaction. Multi-step writes,
// like the policy assembler's all-or-nothing assembly, use an explicit
// bracket instead:
//
//	tx, err := store.BeginWrite(ctx)
//	if err != nil { ... }
//	defer tx.Rollback()
//
//	if err := tx.CreatePolicy(ctx, uri); err != nil { ... }
//	if err := tx.CreateRule(ctx, ruleURI, typeURI, label); err != nil { ... }
//	if err := tx.AddRuleToPolicy(ctx, ruleURI, uri); err != nil { ... }
//
//	return tx.Commit()
//
// Nothing inside the bracket commits implicitly, so a failure at any step
// leaves the store exactly as it was.
//
// Two SQLite drivers are supported, selected by Config.Driver: modernc.org/
// sqlite ("sqlite", pure Go, the default) and mattn/go-sqlite3 ("sqlite3",
// cgo).
package store
