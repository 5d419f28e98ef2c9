//go:build !unix

package git

import "os/exec"

// killProcessGroup is a no-op; cancellation kills git alone and WaitDelay
// bounds the wait on its pipes.
func killProcessGroup(*exec.Cmd) {}
