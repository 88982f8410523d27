// Package bigsegments is an internal package containing the SDK's big ("unbounded") segment
// support: the membership cache, the status-polling loop, and user-key hashing. It does not
// include a specific big segment store integration; those are pluggable via ffstoretypes.BigSegmentStore.
package bigsegments
