// Package shmframe implements the lock-free shared-memory exchange
// protocol between a PTP synchronization daemon (the writer) and many
// reader processes (consumers of this module). Two wire layouts coexist:
//
//   - v1: a release-ordered CRC64 checksum word followed by a fixed-size
//     ClockData payload. Readers retry until the checksum they compute
//     over the payload matches the checksum word, or the retry budget is
//     exhausted.
//   - v2: a seqlock. The writer brackets the payload write with an
//     odd-then-even sequence counter; readers retry until they observe
//     the same even sequence before and after copying the payload.
//
// Neither discipline ever takes a kernel lock, and both tolerate an
// untrusted, possibly-dead writer: a reader never blocks indefinitely,
// it gives up after MaxReadTries attempts.
package shmframe
