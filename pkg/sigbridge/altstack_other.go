//go:build !unix

package sigbridge

// ensureAltStack is a no-op on platforms without sigaltstack (Windows):
// Go's structured-exception-handling-based fault recovery there needs no
// alternate stack, so there is nothing to degrade.
func ensureAltStack() {}
