//go:build !debug

package debug

const Enabled = false

func Logf(string, string, ...any) {}
