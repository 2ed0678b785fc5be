// Package pool
// Author: momentics <momentics@gmail.com>
//
// Reference-counted buffer pool for media pipelines.
//
// Buffers belong to groups. A group allocates regions from one backend
// (see package alloc) under an unlimited, count-limited or size-limited
// policy and keeps its buffers on two lists: used (referenced) and unused
// (available for reuse, searched oldest first). Pipeline stages share a
// buffer by taking references; the last RefDec returns it to the unused
// list.
//
// Resetting or deinitializing a group while stages still hold buffers
// discards them: they leave the group's accounting at once and are
// physically released by their last RefDec.
//
// The package-level functions operate on a process-wide default Registry,
// whose legacy group serves callers that do not manage their own group.
package pool
