/*
Package safemode implements the owner-exclusive lockdown switch for a
vault.

While safe mode is enabled the vault executor refuses any request that
was not proposed by the vault owner, no matter how many guardian votes
it collected. Toggling is immediate and fully reversible. Every toggle,
including the clear performed by an executed emergency unlock, appends
an entry to an append-only per-vault history.

Safe mode never cancels anything. An approved request survives a
lockdown untouched and becomes executable again the moment safe mode is
disabled, provided its own windows still allow it.
*/
package safemode
