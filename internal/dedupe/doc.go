// Package dedupe tracks recently seen Telegram update ids so redelivered
// webhook calls are acknowledged without reprocessing.
//
// The cache is TTL-based and size-bounded. CheckAndMark atomically tests and
// records an id; Forget releases one whose processing failed, so the
// redelivered attempt runs.
package dedupe
