/*
Package escrow implements the per-leg state machine of a cross-chain
atomic swap.

Two escrows on two independent ledgers share one hashlock. The maker
funds the source escrow, the taker funds the destination escrow. Either
side claims by revealing the shared secret, which makes it public and
enables the symmetric claim on the other ledger; if the swap stalls,
time-gated cancellation windows return the funds, and public
sub-windows pay the safety deposit to any whitelisted third party who
executes on the owner's behalf.

The package is pure of I/O: all ledger effects go through the Host
interface and all operations take the full Immutables as an explicit
argument, re-verified against the escrow's derived address on every
call.
*/
package escrow
