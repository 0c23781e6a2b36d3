/*
Package ledger keeps track of fungible funds held by addresses.

Every address owns at most one account. An account is a set of coins,
at most one per currency ticker. Funds are moved between accounts by
the Controller, which is also the integration point for other
extensions that need to transfer value as part of their own state
transitions.

There is no minting inside a running chain. All funds are seeded from
the genesis file.
*/
package ledger
