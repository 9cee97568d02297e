package rtthread

import "sync"

// Once is a thin rename of sync.Once as the shim's call_once: the standard
// library's primitive already is the idiomatic Go form of
// pthread_once/call_once, so there is nothing to generalize here beyond
// giving it the name spec.md §6 uses.
type Once = sync.Once
