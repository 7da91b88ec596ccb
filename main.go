package main

import "github.com/Temutjin2k/ride-hail-system/cmd/ride"

// main starts whichever service internal/app/app.go dispatches to, based
// on the configured service mode (ride, driver_and_location, admin, auth,
// or matching). cmd/ride.Run is the generic config-load-and-start
// bootstrap shared by every mode, not ride-specific despite its package
// name.
func main() {
	ride.Run()
}
