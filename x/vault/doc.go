/*
Package vault implements multi-party authorization of sensitive vault
operations.

A vault is a pool of custodied funds with an owner and a versioned
policy. The policy holds one rule per request kind: how many guardian
approvals are required, how long the voting window stays open, whether
an approval must cool off before execution, and, for emergency unlocks,
the size of the emergency-guardian override quorum and the timeout
fallback delay.

A request moves through one state machine regardless of its kind:
proposed as pending, approved once enough distinct guardian votes
accumulate, executed exactly once. Quorum is always evaluated live
against the current guardian directory, the vote set is the only
authoritative record and counts are derived from it. Time transitions
are lazy, there are no timers: expiry and timelock elapse are observed
at access time, with a cron task making expiry durable without waiting
for the next access.

Execution resolves overrides through a fixed priority ladder: an
emergency unlock approved by the emergency quorum or by the timeout
fallback escapes safe mode, safe mode otherwise blocks everything not
originated by the vault owner, and only then do the ordinary approval
and timelock rules apply.
*/
package vault
