/*
Package guardian implements the membership directory for vault
guardians.

A guardian is an address entitled to vote on vault authorization
requests. Registration is gated by the configuration owner and every
new guardian matures only after an activation delay, so a compromised
admin cannot stack a quorum within a single block. Guardian records
are never deleted. Expiry and revocation are terminal status flips
that keep the history readable.

The only facts other extensions may consult are exposed through the
Directory: whether an address is an active guardian at a given time
and how many guardians of a role are active. Activation is lazy, a
matured PENDING record is observed active without any extra message.
*/
package guardian
