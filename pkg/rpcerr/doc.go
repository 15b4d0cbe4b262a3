// Package rpcerr classifies RPC error responses into typed errors.
//
// A Table is built once (normally by generated code) from per-code classes.
// Classification tries, in order:
//  1. an exact entry name within the code
//  2. the pattern entry with the longest literal prefix (then longest
//     suffix, then name) whose placeholder matches a run of digits
//  3. the generic error of the code
//
// Classify never fails: unknown codes and unseen messages produce a generic
// *Error carrying the observed code and message.
package rpcerr
