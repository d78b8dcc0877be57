// Package cli holds the pieces shared by the command binaries: glog
// setup and the flasher.Logger adapter, terminal progress output and the
// partition table printer.
package cli
