//go:build linux

package dialog

// NewNativeBackend returns the zenity backend on linux: sqweek/dialog needs
// gtk through cgo there, while zenity drives the desktop's own dialog
// binary.
func NewNativeBackend() Backend { return ZenityBackend{} }
