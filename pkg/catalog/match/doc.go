// Package match ranks the stored policies against a caller-supplied set of
// desired rules.
//
// The comparison is deliberately naive - every policy against every desired
// rule against every action - because the catalogue holds tens to low
// hundreds of policies; correctness beats indexing at that size.
//
// A policy that fails to grant any desired rule is excluded outright, not
// ranked low. Survivors are ordered by how much more they grant than was
// asked for: rank counts the extraneous rules, so rank 0 is the closest,
// least-permissive match.
package match
