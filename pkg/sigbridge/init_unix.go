//go:build unix

package sigbridge

import (
	"os"
	"syscall"

	"github.com/zelang-dev/goexc/pkg/except"
)

func init() {
	signalDescriptors[os.Interrupt] = except.SigInt
	signalDescriptors[syscall.SIGINT] = except.SigInt
	signalDescriptors[syscall.SIGTERM] = except.SigTerm
	signalDescriptors[syscall.SIGABRT] = except.SigAbrt
}
