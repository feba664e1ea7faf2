// SPDX-License-Identifier: MIT

// Package store guards config documents for use across goroutines.
//
// A cfgfile.Document is single-threaded. Holder owns one document per
// logical store and serialises writers; readers on other goroutines take
// snapshots, so they see the state before or after an update, never a mix.
package store
