// Package manager owns the wireless connection lifecycle.
//
// The Manager drives a wireless.Link through station connection attempts.
// When an attempt fails, or no credentials are stored, it switches the link
// into access point mode, runs a provisioning portal to collect new
// credentials, persists them and tries again. Run only returns once the
// station is connected (or the context is cancelled, or persisting new
// credentials fails), so the device is never left without a way to be
// reconfigured.
//
// # States
//
//	Disconnected -> Connecting     connect attempt with credentials
//	Connecting   -> Connected      driver reports an address
//	Connecting   -> Disconnected   wrong password, no access point, timeout, other failure
//	Disconnected -> AccessPoint    any failure, or no credentials
//	AccessPoint  -> Connecting     new credentials collected and saved
//
// State is owned by the Manager; callers observe it through State and the
// OnStateChange callback.
//
// # Concurrency
//
// All driver access is serialized by one mutex, so the station and access
// point personas are never toggled from two goroutines at once. State reads
// use a separate lock and never wait on the driver.
package manager
