// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bringup

// State is a milestone of the bring-up pipeline. States are reached strictly
// in order; an elided step still advances through its state.
type State int

const (
	StateStart State = iota
	StateBitstreamLoaded
	StateKernelLoaded
	StateTraceConfigured
	StateBootTriggered
	StateInitStarted
	StateLoginPromptSeen
	StateShellReady
	StateSSHKeysProvisioned
	StateUserProvisioned
	StateDone
)

// String implements [fmt.Stringer].
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateBitstreamLoaded:
		return "bitstream loaded"
	case StateKernelLoaded:
		return "kernel loaded"
	case StateTraceConfigured:
		return "trace configured"
	case StateBootTriggered:
		return "boot triggered"
	case StateInitStarted:
		return "init started"
	case StateLoginPromptSeen:
		return "login prompt seen"
	case StateShellReady:
		return "shell ready"
	case StateSSHKeysProvisioned:
		return "ssh keys provisioned"
	case StateUserProvisioned:
		return "user provisioned"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
