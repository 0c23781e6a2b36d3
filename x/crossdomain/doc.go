/*
Package crossdomain verifies guardian membership proofs issued by other
domains.

A domain publishes the Merkle root of its guardian set. Independent
relayers forward that root to this engine and once enough distinct
relayers confirmed the same message, the root becomes the trusted
membership snapshot of the source domain. The relayer quorum is its own
configuration value and has nothing to do with any vault quorum.

A guardian of a remote domain proves membership with an RFC 6962
inclusion proof against the trusted snapshot. A valid, fresh proof lets
the vault extension count that guardian's vote at the remote weight of
the vault policy.

Relayer confirmations arrive in any order. They are deduplicated by
relayer identity per message, so one relayer can never count twice. A
message that does not reach the quorum within the configured timeout is
observed failed lazily.
*/
package crossdomain
