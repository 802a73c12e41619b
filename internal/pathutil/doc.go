// Copyright 2024 Erraggy
// SPDX-License-Identifier: MIT

// Package pathutil builds and orders the field paths attached to validation
// issues.
//
// A field path names a location inside a decoded JSON document. It is
// rendered in the JSONPath-like form used in error responses:
//
//	$                 the document root
//	$.user.id         object keys that are plain identifiers
//	$['first name']   any other object key
//	$.tags[2]         array indices
//
// A walk tracks its position with a pooled [Cursor]. It descends and climbs
// without allocating, and a [Path] is copied out only when an issue is
// reported:
//
//	c := pathutil.AcquireCursor()
//	defer c.Release()
//
//	c.Key("user")
//	c.Key("id")
//	loc := c.Path() // $.user.id
//	c.Up()
//	c.Up()
//
// Paths compare structurally with [Compare]: segment by segment, indices
// numerically, keys lexicographically, and a prefix before any of its
// extensions. This is the ordering used to sort issues deterministically.
package pathutil
