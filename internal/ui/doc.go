// Package ui renders terminal output for the wifiprov CLI.
//
// Two kinds of output live here. Result boxes (success, failure, warning)
// are rendered once and printed by one-shot commands such as `submit` and
// `credentials show`. The Monitor is a Bubble Tea program that follows the
// connection manager while `wifiprov monitor` runs, showing the current
// state, a spinner while the device is connecting or provisioning, and the
// history of transitions.
//
// # Feeding the Monitor
//
// The monitor never talks to the manager directly. Callers forward state
// changes as messages:
//
//	p := tea.NewProgram(ui.NewMonitor("wifiprov monitor", params))
//	cfg.OnStateChange = func(from, to manager.State) {
//	    p.Send(ui.StateMsg{From: from, To: to, At: time.Now()})
//	}
//	go func() { p.Send(ui.DoneMsg{Err: mgr.Run(ctx)}) }()
//	_, err := p.Run()
//
// # Logging Integration
//
// Zap logging is silent unless WIFIPROV_LOG_LEVEL is set, so the styled
// output is not interleaved with log lines.
package ui
